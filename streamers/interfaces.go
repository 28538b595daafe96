package streamers

// ChatHandler defines the interface for handling prompt I/O.
// The CLI implementation writes answers to stdout and status to stderr.
type ChatHandler interface {
	// Welcome announces the model that will answer.
	Welcome(modelName string)

	// Summary shows the structured request before it is sent.
	Summary(goals, returnFormat, warnings string)

	// Thinking is called with the full prompt once it has been sent.
	Thinking(prompt string)

	// PublishAnswerChunk is called for each filtered chunk of the answer.
	PublishAnswerChunk(chunk string)

	// FinishAnswer is called when the answer is complete.
	FinishAnswer()

	// AwaitClientAnswer shows a prompt and reads one line of input.
	AwaitClientAnswer(prompt string) (string, error)

	// Error displays an error message.
	Error(err error)
}
