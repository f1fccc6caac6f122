package action

// CleanQuestion is asked before clearing the workspace.
const CleanQuestion = "Are you sure you want to clear all fields?"

// clean empties every panel and text field after confirmation.
func (p *Pipeline) clean(Event) error {
	if p.Confirmer == nil || !p.Confirmer.Confirm(CleanQuestion) {
		return nil
	}

	for _, pn := range p.Coordinator.Panels() {
		pn.Clean()
	}
	p.Form.ClearText()

	if text := p.settings.ResultText; text != "" {
		p.present(func(pr Presenter) { pr.SetResultLabel(text) })
	}
	p.setAffordance(AffordanceUpdate, false)

	p.Notifier.Done(Clean, "")
	return nil
}

func (p *Pipeline) toggleSidebar(Event) error {
	p.present(func(pr Presenter) { pr.ToggleSidebar() })
	return nil
}

func (p *Pipeline) showShortcuts(Event) error {
	bindings := p.Coordinator.Keymap().Bindings()
	p.present(func(pr Presenter) { pr.ShowShortcuts(bindings) })
	return nil
}
