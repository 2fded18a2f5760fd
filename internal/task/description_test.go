package task

import (
	"encoding/json"
	"testing"

	"github.com/phrazzld/launchpad/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseParams() Params {
	return Params{
		Kind:        KindDownload,
		GameID:      "hk4e",
		GameName:    "Genshin",
		Endpoint:    "https://launcher.example/api",
		Folder:      "/games/hk4e",
		Languages:   []string{"en-us", "ja-jp"},
		Region:      "os_euro",
		PresetID:    "global",
		RepairFiles: []string{"a.bin"},
	}
}

func mustDescription(t *testing.T, p Params) Description {
	t.Helper()
	d, err := NewDescription(p)
	require.NoError(t, err)
	return d
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParseKind("defragment")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestNewDescription_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Params)
	}{
		{"missing kind", func(p *Params) { p.Kind = "" }},
		{"unknown kind", func(p *Params) { p.Kind = "defragment" }},
		{"missing game", func(p *Params) { p.GameID = "" }},
		{"missing endpoint", func(p *Params) { p.Endpoint = "" }},
		{"missing folder", func(p *Params) { p.Folder = "" }},
		{"empty language", func(p *Params) { p.Languages = []string{"en-us", ""} }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := baseParams()
			tc.mutate(&p)
			_, err := NewDescription(p)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestDescription_IsImmutable(t *testing.T) {
	p := baseParams()
	d := mustDescription(t, p)

	p.Languages[0] = "zh-cn"
	assert.Equal(t, []string{"en-us", "ja-jp"}, d.Languages())

	langs := d.Languages()
	langs[0] = "ko-kr"
	assert.Equal(t, []string{"en-us", "ja-jp"}, d.Languages())

	files := d.Params().RepairFiles
	files[0] = "z.bin"
	assert.Equal(t, []string{"a.bin"}, d.RepairFiles())
}

func TestDescription_Identity(t *testing.T) {
	base := mustDescription(t, baseParams())

	t.Run("set order and duplicates do not matter", func(t *testing.T) {
		p := baseParams()
		p.Languages = []string{"ja-jp", "en-us", "ja-jp"}
		assert.True(t, base.SameTask(mustDescription(t, p)))
	})

	t.Run("display name does not matter", func(t *testing.T) {
		p := baseParams()
		p.GameName = "Genshin Impact"
		assert.Equal(t, base.Identity(), mustDescription(t, p).Identity())
	})

	changes := map[string]func(p *Params){
		"kind":         func(p *Params) { p.Kind = KindUpdate },
		"game":         func(p *Params) { p.GameID = "nap" },
		"folder":       func(p *Params) { p.Folder = "/games/other" },
		"endpoint":     func(p *Params) { p.Endpoint = "https://mirror.example/api" },
		"region":       func(p *Params) { p.Region = "os_asia" },
		"preset":       func(p *Params) { p.PresetID = "cn" },
		"languages":    func(p *Params) { p.Languages = []string{"en-us"} },
		"repair files": func(p *Params) { p.RepairFiles = []string{"a.bin", "b.bin"} },
	}
	for field, change := range changes {
		t.Run(field+" changes identity", func(t *testing.T) {
			p := baseParams()
			change(&p)
			assert.False(t, base.SameTask(mustDescription(t, p)))
		})
	}
}

func TestDescription_JSON(t *testing.T) {
	d := mustDescription(t, baseParams())

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"game_id":"hk4e"`)

	var decoded Description
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, d, decoded)

	err = json.Unmarshal([]byte(`{"kind":"download","game_id":"hk4e"}`), &decoded)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
