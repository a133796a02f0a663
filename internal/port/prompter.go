package port

// Prompter is the interactive surface the pipeline blocks on. All calls block
// until the user answers; there are no timeouts here (the one bounded wait in
// the system is the seed polling loop, which does not go through Prompter).
type Prompter interface {
	// Ask prints the question and returns the raw answer line.
	Ask(question string) (string, error)

	// Confirm asks a yes/no question. false is a valid answer, not an error.
	Confirm(question string) (bool, error)

	// Select presents numbered options and returns the chosen index.
	// Returns domain.ErrUserCancelled when the cancel token is entered.
	Select(question string, options []string) (int, error)
}
