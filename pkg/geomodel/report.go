package geomodel

import (
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"emperror.dev/errors"
	"github.com/Masterminds/sprig/v3"
	"github.com/atsushinee/go-markdown-generator/doc"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type Verdict string

const (
	VerdictPass = Verdict("PASS")
	VerdictWarn = Verdict("WARN")
	VerdictFail = Verdict("FAIL")
)

type FileSummary struct {
	Name string
	Size int64
}

func (fs FileSummary) HumanSize() string {
	return humanize.Bytes(uint64(fs.Size))
}

// Report aggregates the findings of one validation run.
type Report struct {
	RunID    string
	Folder   string
	Started  time.Time
	Duration time.Duration
	Files    []FileSummary
	Findings []*Finding
}

func NewReport(folder string) *Report {
	return &Report{
		RunID:   uuid.NewString(),
		Folder:  folder,
		Started: time.Now(),
	}
}

// AddStatus takes over the findings collected during the pipeline run,
// deduplicated but otherwise in emission order.
func (r *Report) AddStatus(status *ValidationStatus) {
	status.Compact()
	r.Findings = append(r.Findings, status.Findings...)
}

func (r *Report) ErrorCount() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			n++
		}
	}
	return n
}

func (r *Report) WarningCount() int {
	return len(r.Findings) - r.ErrorCount()
}

// Verdict is PASS without findings, WARN when only warnings were
// found, FAIL on any error.
func (r *Report) Verdict() Verdict {
	if r.ErrorCount() > 0 {
		return VerdictFail
	}
	if len(r.Findings) > 0 {
		return VerdictWarn
	}
	return VerdictPass
}

// FileFindings groups the findings of one file, keeping both the
// first-appearance order of files and the emission order within.
type FileFindings struct {
	File     string
	Findings []*Finding
}

func (r *Report) Grouped() []*FileFindings {
	var groups []*FileFindings
	index := map[string]*FileFindings{}
	for _, f := range r.Findings {
		group, ok := index[f.File]
		if !ok {
			group = &FileFindings{File: f.File}
			index[f.File] = group
			groups = append(groups, group)
		}
		group.Findings = append(group.Findings, f)
	}
	return groups
}

var reportTemplate = template.Must(
	template.New("report").Funcs(sprig.TxtFuncMap()).Parse(`{{repeat 66 "="}}
BUNDLE VALIDATION REPORT
folder:  {{.Folder}}
run:     {{.RunID}}
started: {{.Started.Format "2006-01-02T15:04:05Z07:00"}}
{{repeat 66 "="}}
{{range .Grouped}}
[{{.File}}]
{{- range .Findings}}
  {{printf "%-7s" (printf "%s" .Severity)}} #{{.Code}} - {{.Description}}{{if .Locus}} ({{.Locus}}){{end}}{{if .Detail}}: {{.Detail}}{{end}}
{{- end}}
{{end}}{{if not .Findings}}
no findings
{{end}}
{{repeat 66 "-"}}
files checked: {{len .Files}}{{range .Files}}
  {{printf "%-40s" .Name}} {{.HumanSize}}{{end}}
{{repeat 66 "-"}}
{{.ErrorCount}} errors, {{.WarningCount}} warnings
VERDICT: {{.Verdict}}
{{repeat 66 "="}}
`))

// Render produces the textual report.
func (r *Report) Render() (string, error) {
	var sb strings.Builder
	if err := reportTemplate.Execute(&sb, r); err != nil {
		return "", errors.Wrap(err, "cannot render report")
	}
	return sb.String(), nil
}

// RenderMarkdown produces the summary document, one section per file
// with findings plus the verdict.
func (r *Report) RenderMarkdown() string {
	md := doc.NewMarkDown()
	md.WriteTitle("Bundle validation report", doc.LevelTitle).
		WriteLines(2)
	md.Write("Folder: " + r.Folder).WriteLines(2)
	md.Write("Run: " + r.RunID).WriteLines(2)
	for _, group := range r.Grouped() {
		md.WriteTitle(group.File, doc.LevelNormal)
		for _, f := range group.Findings {
			md.Write("- " + f.Error())
			md.Write("\n")
		}
		md.WriteLines(1)
	}
	md.WriteTitle("Verdict: "+string(r.Verdict()), doc.LevelNormal)
	return md.String()
}

// LogName derives the log artifact name from the folder name, the way
// the artifact sits next to the validated files.
func (r *Report) LogName() string {
	return slug.Make(filepath.Base(r.Folder)) + ".log"
}

// WriteLog persists the rendered report inside the validated folder,
// truncating any previous run's artifact.
func (r *Report) WriteLog() (string, error) {
	rendered, err := r.Render()
	if err != nil {
		return "", err
	}
	path := filepath.Join(r.Folder, r.LogName())
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", errors.Wrapf(err, "cannot write log artifact '%s'", path)
	}
	return path, nil
}
