package server

import tmpl "github.com/alexanderramin/waypoint/internal/template"

func launchDoc() *tmpl.Document {
	return &tmpl.Document{
		Name: "Website Launch",
		Items: []tmpl.DocumentItem{
			{Key: "kickoff", Title: "Kickoff"},
			{Key: "review", Parent: "kickoff", Title: "Design Review", Offset: "7"},
			{Key: "golive", Title: "Go-Live", Offset: "30"},
		},
	}
}
