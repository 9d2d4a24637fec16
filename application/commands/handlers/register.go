package handlers

import (
	"seds-backend/application/commands"
	"seds-backend/application/commands/bus"
)

// Register binds every command to its handler on the bus.
func Register(b *bus.CommandBus, answers *SaveAnswerHandler, status *FormStatusHandler, users *UserHandler) error {
	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.SaveAnswerCommand{}, bus.Typed(answers.Handle)},
		{commands.CertifyFormCommand{}, bus.Typed(status.Certify)},
		{commands.UncertifyFormCommand{}, bus.Typed(status.Uncertify)},
		{commands.UpdateSummaryNotesCommand{}, bus.Typed(status.UpdateSummaryNotes)},
		{commands.SetNotApplicableCommand{}, bus.Typed(status.SetNotApplicable)},
		{commands.CreateUserCommand{}, bus.Typed(users.Create)},
		{commands.SetUserActiveCommand{}, bus.Typed(users.SetActive)},
	}

	for _, r := range registrations {
		if err := b.Register(r.cmd, r.handler); err != nil {
			return err
		}
	}
	return nil
}
