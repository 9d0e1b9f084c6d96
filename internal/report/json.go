package report

import (
	"encoding/json"
	"io"

	"rtlpatch/internal/driver"
	"rtlpatch/internal/observ"
	"rtlpatch/internal/patch"
)

// fileReport — сериализуемое представление результата по одному файлу.
type fileReport struct {
	Path    string         `json:"path"`
	Changed bool           `json:"changed"`
	Fixes   int            `json:"fixes"`
	Report  patch.Report   `json:"report"`
	Timing  *observ.Report `json:"timing,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type runReport struct {
	Files      []fileReport `json:"files"`
	TotalFixes int          `json:"total_fixes"`
	Failed     int          `json:"failed"`
}

// JSON serializes repair results as one indented JSON document.
func JSON(w io.Writer, results []driver.Result) error {
	run := runReport{Files: make([]fileReport, 0, len(results))}

	for _, res := range results {
		fr := fileReport{
			Path:    res.Path,
			Changed: res.Changed,
			Fixes:   res.Report.TotalFixes(),
			Report:  res.Report,
			Timing:  res.Timing,
		}
		if res.Err != nil {
			fr.Error = res.Err.Error()
			run.Failed++
		}
		run.TotalFixes += fr.Fixes
		run.Files = append(run.Files, fr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}
