package task

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/launchpad/internal/domain"
)

// Kind identifies the operation a task performs.
type Kind string

// Supported task kinds.
const (
	KindDownload         Kind = "download"
	KindUpdate           Kind = "update"
	KindVerify           Kind = "verify"
	KindRepair           Kind = "repair"
	KindInstallerAcquire Kind = "installer_acquire"
	KindInstallerUpdate  Kind = "installer_update"
)

// Kinds lists every supported kind in a stable order.
var Kinds = []Kind{
	KindDownload,
	KindUpdate,
	KindVerify,
	KindRepair,
	KindInstallerAcquire,
	KindInstallerUpdate,
}

// ParseKind converts s into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	return slices.Contains(Kinds, k)
}

// checksFiles reports whether the kind starts in the verifying phase.
func (k Kind) checksFiles() bool {
	return k == KindVerify || k == KindRepair
}

func (k Kind) installer() bool {
	return k == KindInstallerAcquire || k == KindInstallerUpdate
}

// Params are the caller-supplied fields of a task description.
type Params struct {
	Kind        Kind     `json:"kind" validate:"required,oneof=download update verify repair installer_acquire installer_update"`
	GameID      string   `json:"game_id" validate:"required"`
	GameName    string   `json:"game_name"`
	Endpoint    string   `json:"endpoint" validate:"required"`
	Folder      string   `json:"folder" validate:"required"`
	Languages   []string `json:"languages,omitempty" validate:"dive,required"`
	Region      string   `json:"region,omitempty"`
	PresetID    string   `json:"preset_id,omitempty"`
	RepairFiles []string `json:"repair_files,omitempty" validate:"dive,required"`
}

var validate = validator.New()

// Validate checks that the required fields are present.
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// Description is an immutable request to run one task. The zero value is
// not a valid description; use NewDescription.
type Description struct {
	p Params
}

// NewDescription validates p and returns a Description holding its own
// copy of every slice.
func NewDescription(p Params) (Description, error) {
	if err := p.Validate(); err != nil {
		return Description{}, err
	}
	p.Languages = slices.Clone(p.Languages)
	p.RepairFiles = slices.Clone(p.RepairFiles)
	return Description{p: p}, nil
}

// IsZero reports whether d was never constructed.
func (d Description) IsZero() bool { return d.p.Kind == "" }

func (d Description) Kind() Kind       { return d.p.Kind }
func (d Description) GameID() string   { return d.p.GameID }
func (d Description) GameName() string { return d.p.GameName }
func (d Description) Endpoint() string { return d.p.Endpoint }
func (d Description) Folder() string   { return d.p.Folder }
func (d Description) Region() string   { return d.p.Region }
func (d Description) PresetID() string { return d.p.PresetID }

// Languages returns a copy of the selected languages.
func (d Description) Languages() []string { return slices.Clone(d.p.Languages) }

// RepairFiles returns a copy of the files explicitly requested for repair.
func (d Description) RepairFiles() []string { return slices.Clone(d.p.RepairFiles) }

// Params returns a copy of the fields d was built from.
func (d Description) Params() Params {
	p := d.p
	p.Languages = slices.Clone(p.Languages)
	p.RepairFiles = slices.Clone(p.RepairFiles)
	return p
}

// MarshalJSON encodes d as its Params.
func (d Description) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.p)
}

// UnmarshalJSON decodes and validates a description.
func (d *Description) UnmarshalJSON(data []byte) error {
	var p Params
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	nd, err := NewDescription(p)
	if err != nil {
		return err
	}
	*d = nd
	return nil
}

// Identity is the comparison key of a description. Two descriptions are the
// same logical task, and so resumable as one another, iff their identities
// are equal. Set-valued fields are sorted and deduplicated.
type Identity struct {
	Kind        Kind
	GameID      string
	Folder      string
	Endpoint    string
	Region      string
	PresetID    string
	Languages   string
	RepairFiles string
}

// Identity returns the comparison key of d. GameName is display-only and
// does not take part.
func (d Description) Identity() Identity {
	return Identity{
		Kind:        d.p.Kind,
		GameID:      d.p.GameID,
		Folder:      d.p.Folder,
		Endpoint:    d.p.Endpoint,
		Region:      d.p.Region,
		PresetID:    d.p.PresetID,
		Languages:   setKey(d.p.Languages),
		RepairFiles: setKey(d.p.RepairFiles),
	}
}

// SameTask reports whether d and other share an identity.
func (d Description) SameTask(other Description) bool {
	return d.Identity() == other.Identity()
}

func setKey(values []string) string {
	if len(values) == 0 {
		return ""
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return strings.Join(slices.Compact(sorted), "\x1f")
}
