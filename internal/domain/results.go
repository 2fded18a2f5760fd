package domain

// VerifyResult is what the host returns after an integrity check.
type VerifyResult struct {
	Total  int      `json:"total"`
	OK     int      `json:"ok"`
	Failed []string `json:"failed"`
}

// RepairResult is what the host returns after a selective repair.
type RepairResult struct {
	Requested int      `json:"requested"`
	Repaired  int      `json:"repaired"`
	Failed    []string `json:"failed"`
}

// InstallerResult describes an acquired or updated installer.
type InstallerResult struct {
	Path      string `json:"path"`
	SourceURL string `json:"source_url"`
	Version   string `json:"version"`
}
