package lua

// Host is what scripts can reach outside the VM.
type Host interface {
	// Send submits text to the server as if the user typed it. Send hooks
	// do not run again for it.
	Send(text string) error
	// Print shows text in the chat window without sending it.
	Print(text string)
}
