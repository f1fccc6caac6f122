package action

import (
	"fmt"

	"github.com/dshills/shellpad/internal/asset"
	"github.com/dshills/shellpad/internal/language"
)

// Result titles.
const (
	TitleLintValid  = "JSLint Valid!"
	TitleLintErrors = "JSLint Errors"
	TitleLintNoJS   = "JSLint - Sorry No JavaScript!"
	TitleShowJS     = "JavaScript Code"
)

// lint checks the script panel once the linter is installed.
func (p *Pipeline) lint(Event) error {
	script, err := p.panel(ScriptPanel)
	if err != nil {
		return err
	}
	p.Loader.Ensure(asset.ToolLint, func() {
		lang := script.Language()
		if !p.settings.LintLanguages.Contains(lang) {
			p.present(func(pr Presenter) {
				pr.Result(TitleLintNoJS, fmt.Sprintf("You're using %s", lang.DisplayName()))
			})
			p.Notifier.Done(Lint, "skipped")
			return
		}

		res, err := p.Tools.Lint(script.Content(), p.settings.LintOptions)
		if err != nil {
			p.logger.Warn("lint: %v", err)
			p.present(func(pr Presenter) { pr.Error(fmt.Sprintf("lint: %v", err)) })
			p.Notifier.Failed(Lint, err)
			return
		}
		title := TitleLintValid
		if !res.Passed {
			title = TitleLintErrors
		}
		p.present(func(pr Presenter) { pr.Result(title, res.Report()) })
		p.Notifier.Done(Lint, title)
	})
	return nil
}

// tidy reformats every panel whose language has a beautifier. A formatter
// returning nothing falls back to the backend's reindent.
func (p *Pipeline) tidy(Event) error {
	p.Loader.Ensure(asset.ToolBeautify, func() {
		changed := 0
		for _, pn := range p.Coordinator.Panels() {
			kind, ok := p.settings.Tidy[pn.Language()]
			if !ok || !p.Tools.HasFormatter(kind) {
				continue
			}
			code := pn.Content()
			if code == "" {
				continue
			}
			fixed, err := p.Tools.Beautify(kind, code)
			if err != nil {
				p.logger.Warn("tidy %s: %v", pn.Name(), err)
				continue
			}
			if fixed != "" {
				pn.SetContent(fixed)
			} else if eng := pn.Backend(); eng != nil {
				eng.Reindent()
			}
			changed++
		}
		p.Notifier.Done(Tidy, fmt.Sprintf("%d panels", changed))
	})
	return nil
}

// showJS shows the JavaScript compiled from a CoffeeScript script panel.
// Compile failures are shown as the result; nothing escapes the action.
func (p *Pipeline) showJS(Event) error {
	script, err := p.panel(ScriptPanel)
	if err != nil {
		return err
	}
	p.Loader.Ensure(asset.ToolCompile, func() {
		if !p.settings.ShowJSLanguages.Contains(script.Language()) {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("showjs panic: %v", r)
				p.present(func(pr Presenter) { pr.Result(TitleShowJS, fmt.Sprint(r)) })
			}
		}()

		out, err := p.Tools.Compile(script.Content())
		if err != nil {
			p.present(func(pr Presenter) { pr.Result(TitleShowJS, err.Error()) })
			p.Notifier.Failed(ShowJS, err)
			return
		}
		p.present(func(pr Presenter) { pr.Result(TitleShowJS, out) })
		p.Notifier.Done(ShowJS, "")
	})
	return nil
}

// RecomputeVisibility shows lint when any panel uses a lintable language,
// showjs when the script panel uses a compilable one, and tidy when any
// panel maps to an available formatter. Tidy waits for the beautifier.
func (p *Pipeline) RecomputeVisibility() {
	langs := p.Coordinator.Languages()

	p.setAffordance(AffordanceLint, p.settings.LintLanguages.Any(langs...))
	p.setAffordance(AffordanceShowJS, p.settings.ShowJSLanguages.Contains(p.Coordinator.Language(ScriptPanel)))

	if !p.tidyCandidate(langs) {
		p.setAffordance(AffordanceTidy, false)
		return
	}
	p.Loader.Ensure(asset.ToolBeautify, func() {
		p.setAffordance(AffordanceTidy, p.tidyAvailable(p.Coordinator.Languages()))
	})
}

func (p *Pipeline) tidyCandidate(langs []language.Language) bool {
	for _, l := range langs {
		if _, ok := p.settings.Tidy[l]; ok {
			return true
		}
	}
	return false
}

func (p *Pipeline) tidyAvailable(langs []language.Language) bool {
	for _, l := range langs {
		if kind, ok := p.settings.Tidy[l]; ok && p.Tools.HasFormatter(kind) {
			return true
		}
	}
	return false
}
