package report

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "report: create dir %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return eris.Wrapf(err, "report: create temp for %s", path)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return eris.Wrapf(err, "report: write %s", path)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return eris.Wrapf(err, "report: close %s", path)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return eris.Wrapf(err, "report: chmod %s", path)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return eris.Wrapf(err, "report: rename %s", path)
	}
	return nil
}

// Artifact is one rendered output file.
type Artifact struct {
	Name string
	Data []byte
}

// Render produces every report artifact in memory.
func Render(r *Report) ([]Artifact, error) {
	var ev, compact bytes.Buffer
	if err := WriteEvidenceCSV(&ev, r.Evidence); err != nil {
		return nil, err
	}
	if err := WriteCompactCSV(&compact, r); err != nil {
		return nil, err
	}
	summary, err := YAML(r)
	if err != nil {
		return nil, err
	}
	md := Markdown(r)
	title := r.Models.Left + " vs " + r.Models.Right + " bakeoff"

	return []Artifact{
		{Name: EvidenceFile, Data: ev.Bytes()},
		{Name: CompactFile, Data: compact.Bytes()},
		{Name: MarkdownFile, Data: []byte(md)},
		{Name: LaTeXFile, Data: []byte(LaTeX(r))},
		{Name: HTMLFile, Data: HTML(md, title)},
		{Name: SummaryFile, Data: summary},
	}, nil
}

// WriteAll renders r and writes every artifact into outdir. Nothing is
// written unless every artifact renders. Returns the written paths.
func WriteAll(outdir string, r *Report) ([]string, error) {
	arts, err := Render(r)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(arts))
	for _, a := range arts {
		p := filepath.Join(outdir, a.Name)
		if err := WriteFileAtomic(p, a.Data); err != nil {
			return paths, err
		}
		zap.L().Debug("report: wrote artifact", zap.String("path", p), zap.Int("bytes", len(a.Data)))
		paths = append(paths, p)
	}
	return paths, nil
}
