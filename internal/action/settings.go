package action

import (
	"time"

	"github.com/dshills/shellpad/internal/language"
	"github.com/dshills/shellpad/internal/tool"
)

// Endpoints are the server paths the pipeline talks to. LibraryVersions
// and Dependencies are templates with {group_id} and {lib_id} placeholders.
type Endpoints struct {
	Run             string
	Save            string
	Favourite       string
	LibraryVersions string
	Dependencies    string
	Draft           string
	Login           string
}

// Settings tune the pipeline.
type Settings struct {
	Endpoints Endpoints

	LintOptions     tool.LintOptions
	LintLanguages   language.Set
	ShowJSLanguages language.Set

	// Tidy maps a panel language to a beautifier function name.
	Tidy map[language.Language]string

	// Username is empty for anonymous sessions.
	Username string

	// ExampleID is the id of the fiddle being edited, sent when marking
	// it as favourite.
	ExampleID string

	// ResultText is the caption restored on the result area by clean.
	ResultText string

	RequestTimeout time.Duration
}

// DefaultSettings returns the stock pipeline settings.
func DefaultSettings() Settings {
	return Settings{
		Endpoints: Endpoints{
			Run:             "/_display/",
			Save:            "/_save/",
			Favourite:       "/_make_favourite/",
			LibraryVersions: "/_get_library_versions/{group_id}/",
			Dependencies:    "/_get_dependencies/{lib_id}/",
			Draft:           "/draft/",
			Login:           "/user/login/",
		},
		LintOptions:     tool.LintOptions{"evil": true, "passfail": false, "browser": true, "newcap": false},
		LintLanguages:   language.NewSet(language.JavaScript, language.JavaScript17),
		ShowJSLanguages: language.NewSet(language.CoffeeScript),
		Tidy: map[language.Language]string{
			language.JavaScript:   "js",
			language.JavaScript17: "js",
		},
		ResultText:     "Result",
		RequestTimeout: 30 * time.Second,
	}
}
