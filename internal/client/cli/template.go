package cli

const profileTemplate = `
=== Scholar Profile{{if .Cached}} (cached){{end}} ===

Name:         {{.DisplayName}}
ID:           {{.ID}}
{{- if .ORCID }}
ORCID:        {{.ORCID}}
{{- end}}
{{- if .Institution }}
Institution:  {{.Institution}}
{{- end}}
Works:        {{.WorksCount}}
Citations:    {{.CitedByCount}}
h-index:      {{.SummaryStats.HIndex}}
i10-index:    {{.SummaryStats.I10Index}}
2yr mean cit: {{printf "%.2f" .SummaryStats.TwoYearMeanCitedness}}
`
