package main

import (
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"rota-engine/internal/continuity"
	"rota-engine/internal/middleware"
	"rota-engine/internal/models"
	"rota-engine/internal/output"
	"rota-engine/internal/schedule"
)

// EmployeeSummary is one row of the dashboard's employee panel,
// tallied from the latest published rota.
type EmployeeSummary struct {
	Name   string
	Early  int
	Middle int
	Late   int
	Worked int
}

var (
	// Published artifact store
	storeMu sync.RWMutex
	rotaDir string
	periods []continuity.Period
	latest  *schedule.Table

	summaries []EmployeeSummary
)

// refreshStore re-reads the artifact directory and parses the latest
// period. Called at startup and on every dashboard hit so a freshly
// published rota shows up without a restart.
func refreshStore() error {
	src := continuity.DirSource{Dir: rotaDir}
	ps, err := src.Periods()
	if err != nil {
		return err
	}

	var table *schedule.Table
	if len(ps) > 0 {
		p := ps[len(ps)-1]
		f, err := src.Open(p)
		if err != nil {
			return err
		}
		table, err = output.ReadTable(f, p.Start)
		f.Close()
		if err != nil {
			return err
		}
	}

	storeMu.Lock()
	periods = ps
	latest = table
	summaries = summarize(table)
	storeMu.Unlock()
	return nil
}

func summarize(t *schedule.Table) []EmployeeSummary {
	if t == nil {
		return nil
	}
	index := make(map[string]int)
	var out []EmployeeSummary
	for _, week := range t.Weeks {
		for _, row := range week.Rows {
			if len(row) == 0 {
				continue
			}
			i, ok := index[row[0]]
			if !ok {
				i = len(out)
				index[row[0]] = i
				out = append(out, EmployeeSummary{Name: row[0]})
			}
			for _, cell := range row[1:] {
				label, ok := models.LabelFromMarker(cell)
				if !ok {
					continue
				}
				switch label {
				case models.Early:
					out[i].Early++
				case models.Middle:
					out[i].Middle++
				case models.Late:
					out[i].Late++
				}
				if label.Working() {
					out[i].Worked++
				}
			}
		}
	}
	return out
}

type DashboardData struct {
	Dir          string
	PeriodCount  int
	Start        time.Time
	HasRota      bool
	Weeks        []schedule.WeekBlock
	Summaries    []EmployeeSummary
	PeriodStarts []time.Time
	CSRFToken    string
}

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if err := refreshStore(); err != nil {
		http.Error(w, "Artifact Read Error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	storeMu.RLock()
	data := DashboardData{
		Dir:         rotaDir,
		PeriodCount: len(periods),
		HasRota:     latest != nil,
		Summaries:   summaries,
		CSRFToken:   middleware.Token(r),
	}
	for _, p := range periods {
		data.PeriodStarts = append(data.PeriodStarts, p.Start)
	}
	if latest != nil {
		data.Start = latest.Start
		data.Weeks = latest.Weeks
	}
	storeMu.RUnlock()

	render(w, "dashboard", data)
}

// handleAPIPeriods lists every published period as JSON.
func handleAPIPeriods(w http.ResponseWriter, r *http.Request) {
	if err := refreshStore(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	type periodJSON struct {
		Start string `json:"start"`
		Path  string `json:"path"`
	}
	storeMu.RLock()
	out := make([]periodJSON, 0, len(periods))
	for _, p := range periods {
		out = append(out, periodJSON{Start: p.Start.Format("2006-01-02"), Path: p.Path})
	}
	storeMu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// handleAPIRota returns the latest rota's week blocks as JSON.
func handleAPIRota(w http.ResponseWriter, r *http.Request) {
	if err := refreshStore(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	storeMu.RLock()
	t := latest
	storeMu.RUnlock()
	if t == nil {
		http.Error(w, "no published rota", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Start string               `json:"start"`
		Weeks []schedule.WeekBlock `json:"weeks"`
	}{Start: t.Start.Format("2006-01-02"), Weeks: t.Weeks})
}

func render(w http.ResponseWriter, tmplName string, data interface{}) {
	if err := templates.ExecuteTemplate(w, tmplName, data); err != nil {
		http.Error(w, "Template Execute Error: "+err.Error(), http.StatusInternalServerError)
	}
}

var templates = template.Must(template.New("").Parse(dashboardTemplate))

const dashboardTemplate = `
{{define "dashboard"}}<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Rota Dashboard</title>
  <script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@main/bundles/datastar.js"></script>
  <style>
    body { font-family: sans-serif; margin: 2rem; }
    table { border-collapse: collapse; margin-bottom: 1.5rem; }
    th, td { border: 1px solid #999; padding: 0.3rem 0.6rem; text-align: center; }
    th { background: #eee; }
    td.name { text-align: left; font-weight: bold; }
    input { padding: 0.4rem; width: 18rem; margin-bottom: 0.8rem; }
  </style>
</head>
<body data-signals="{search: ''}">
  <h1>Rota Dashboard</h1>
  <p>{{.PeriodCount}} published period(s) in {{.Dir}}{{if .PeriodStarts}}:
    {{range $i, $s := .PeriodStarts}}{{if $i}}, {{end}}{{$s.Format "02 Jan 2006"}}{{end}}{{end}}</p>

  {{if .HasRota}}
  <h2>Current period: {{.Start.Format "Monday 02 January 2006"}}</h2>

  <h3>Employees</h3>
  <input type="text" placeholder="Search employees..."
         data-bind-search
         data-on-input__debounce.300ms="@post('/api/search', {headers: {'X-CSRF-Token': '{{.CSRFToken}}'}})">
  <div id="employee-results">
    <table>
      <tr><th>Name</th><th>Early</th><th>Middle</th><th>Late</th><th>Worked</th></tr>
      {{range .Summaries}}
      <tr><td class="name">{{.Name}}</td><td>{{.Early}}</td><td>{{.Middle}}</td><td>{{.Late}}</td><td>{{.Worked}}</td></tr>
      {{end}}
    </table>
  </div>

  <h3>Schedule</h3>
  {{range .Weeks}}
  <table>
    <tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr>
    {{range .Rows}}
    <tr>{{range $i, $cell := .}}{{if eq $i 0}}<td class="name">{{$cell}}</td>{{else}}<td>{{$cell}}</td>{{end}}{{end}}</tr>
    {{end}}
  </table>
  {{end}}
  {{else}}
  <p>No rota has been published yet.</p>
  {{end}}
</body>
</html>
{{end}}`

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	rotaDir = os.Getenv("ROTA_DIR")
	if rotaDir == "" {
		rotaDir = "rotas"
	}

	if err := refreshStore(); err != nil {
		log.Printf("initial artifact read failed: %v", err)
	}

	http.HandleFunc("/", middleware.CSRF(handleDashboard))
	http.HandleFunc("/api/periods", middleware.CSRF(handleAPIPeriods))
	http.HandleFunc("/api/rota", middleware.CSRF(handleAPIRota))
	http.HandleFunc("/api/search", middleware.CSRF(handleActiveSearch))

	log.Printf("Rota dashboard started on :%s (artifacts in %s)", port, rotaDir)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
