package action

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/dshills/shellpad/internal/form"
)

// run submits the form to the run endpoint and shows the rendered result.
// Triggered from the draft affordance it marks the submission draft-only.
func (p *Pipeline) run(ev Event) error {
	p.Coordinator.SyncAllFromBackends()

	if ev.Origin == OriginDraft {
		remove := p.Form.AddTransient(form.FieldDraftOnly, "true")
		defer remove()
	}
	restore := p.Form.Encode()
	defer restore()

	values := p.Form.Values()
	endpoint := p.settings.Endpoints.Run
	p.async(func(ctx context.Context) func() {
		body, err := p.Submitter.Submit(ctx, endpoint, values)
		return func() {
			if err != nil {
				p.requestFailed(Run, err)
				return
			}
			p.present(func(pr Presenter) { pr.Result(p.settings.ResultText, string(body)) })
		}
	})

	p.Notifier.Done(Run, "")
	return nil
}

// save stores the fiddle as a new version of itself. Without a slug there
// is nothing to update and the fiddle is saved as new.
func (p *Pipeline) save(ev Event) error {
	if p.Form.Get(form.FieldSlug) == "" {
		return p.saveNew(ev)
	}
	return p.submitSave(Save)
}

// saveNew stores the fiddle under a fresh slug.
func (p *Pipeline) saveNew(Event) error {
	p.Form.Set(form.FieldSlug, "")
	p.Form.Set(form.FieldVersion, "0")
	return p.submitSave(SaveNew)
}

// submitSave captures the form synchronously and posts it. On success the
// workspace navigates to the saved fiddle exactly once.
func (p *Pipeline) submitSave(name string) error {
	p.Coordinator.SyncAllFromBackends()

	restore := p.Form.Encode()
	values := p.Form.Values()
	restore()

	endpoint := p.settings.Endpoints.Save
	p.async(func(ctx context.Context) func() {
		body, err := p.Submitter.Submit(ctx, endpoint, values)
		return func() {
			if err != nil {
				p.requestFailed(name, err)
				return
			}
			reply, err := form.ParseSaveReply(body)
			if err != nil {
				p.requestFailed(name, err)
				return
			}
			if reply.Error != "" {
				p.present(func(pr Presenter) { pr.Error("ERROR: " + reply.Error) })
				p.Notifier.Failed(name, errors.New(reply.Error))
				return
			}
			p.logger.Info("%s: saved as %s", name, reply.URL)
			p.Notifier.Done(name, reply.URL)
			if p.Navigator != nil {
				p.Navigator.Navigate(reply.URL)
			}
		}
	})
	return nil
}

// favourite marks the current fiddle and follows the returned url.
func (p *Pipeline) favourite(Event) error {
	id := p.settings.ExampleID
	if id == "" {
		return fmt.Errorf("%w: no fiddle to mark", ErrMissingArgument)
	}
	endpoint := p.settings.Endpoints.Favourite
	values := url.Values{form.FieldShellID: {id}}
	p.async(func(ctx context.Context) func() {
		body, err := p.Submitter.Submit(ctx, endpoint, values)
		return func() {
			if err != nil {
				p.requestFailed(Favourite, err)
				return
			}
			u, err := form.ParseFavouriteReply(body)
			if err != nil {
				p.requestFailed(Favourite, err)
				return
			}
			p.Notifier.Done(Favourite, u)
			if p.Navigator != nil {
				p.Navigator.Navigate(u)
			}
		}
	})
	return nil
}

// loadDraft opens the draft window, or the login page for anonymous users.
func (p *Pipeline) loadDraft(Event) error {
	if p.Navigator == nil {
		return nil
	}
	if p.settings.Username != "" {
		p.Navigator.Open(p.settings.Endpoints.Draft, "shellpad_draft")
	} else {
		p.Navigator.Navigate(p.settings.Endpoints.Login)
	}
	p.Notifier.Done(LoadDraft, "")
	return nil
}

// loadLibraryVersions replaces the library and dependency choices with
// those of the group in ev.Arg.
func (p *Pipeline) loadLibraryVersions(ev Event) error {
	if ev.Arg == "" {
		return fmt.Errorf("%w: library group", ErrMissingArgument)
	}
	endpoint := form.Expand(p.settings.Endpoints.LibraryVersions, map[string]string{"group_id": ev.Arg})
	p.async(func(ctx context.Context) func() {
		body, err := p.Submitter.Fetch(ctx, endpoint)
		return func() {
			if err != nil {
				p.requestFailed(Libraries, err)
				return
			}
			libs, deps, err := form.ParseLibraryVersions(body)
			if err != nil {
				p.requestFailed(Libraries, err)
				return
			}
			p.Form.SetLibraries(libs, deps)
			p.Notifier.Done(Libraries, ev.Arg)
		}
	})
	return nil
}

// loadDependencies replaces the dependency choices with those of the
// library in ev.Arg.
func (p *Pipeline) loadDependencies(ev Event) error {
	if ev.Arg == "" {
		return fmt.Errorf("%w: library", ErrMissingArgument)
	}
	endpoint := form.Expand(p.settings.Endpoints.Dependencies, map[string]string{"lib_id": ev.Arg})
	p.async(func(ctx context.Context) func() {
		body, err := p.Submitter.Fetch(ctx, endpoint)
		return func() {
			if err != nil {
				p.requestFailed(Dependencies, err)
				return
			}
			deps, err := form.ParseDependencies(body)
			if err != nil {
				p.requestFailed(Dependencies, err)
				return
			}
			p.Form.SelectLibrary(ev.Arg)
			p.Form.SetDependencies(deps)
			p.Notifier.Done(Dependencies, ev.Arg)
		}
	})
	return nil
}

// requestFailed reports a request that produced no application answer.
func (p *Pipeline) requestFailed(name string, err error) {
	err = &Error{Action: name, Err: err}
	p.logger.Warn("%v", err)
	msg := err.Error()
	var te *form.TransportError
	if !errors.As(err, &te) {
		msg = fmt.Sprintf("request failed: %v", err)
	}
	p.present(func(pr Presenter) { pr.Error(msg) })
	p.Notifier.Failed(name, err)
}
