package pcsc

// TRANSACTION:
// A Transaction is the atomic unit of communication: one command frame
// sent to the reader, followed by one response frame from the card. The
// exchange is strictly half-duplex, so there is never more than one
// transaction in flight per session.
//
// TRACE:
// A Trace is a chronological sequence of Transactions. A single logical
// operation can span several physical transactions, because a card may
// answer 6C XX ("wrong Le, the correct one is XX") and force the command
// to be re-issued. The Trace keeps the whole conversation, and IsSuccess()
// evaluates the final outcome.

// Transaction represents a completed command-response pair.
type Transaction struct {
	Command  *Command
	Response *Response
}

// IsSuccess checks if the transaction ended with a successful status.
// It returns false if the response is missing.
func (t *Transaction) IsSuccess() bool {
	if t.Response == nil {
		return false
	}
	return t.Response.IsSuccess()
}

// Trace is a sequence of transactions (command-response pairs).
// It represents the full history of a logical exchange, including 6CXX
// re-issues.
type Trace []Transaction

// Last returns the final transaction of the trace.
// Returns nil if the trace is empty.
func (t Trace) Last() *Transaction {
	if len(t) == 0 {
		return nil
	}
	return &t[len(t)-1]
}

// IsSuccess checks if the FINAL transaction in the trace was successful.
// This determines if the overall logical operation succeeded, regardless
// of intermediate statuses.
func (t Trace) IsSuccess() bool {
	last := t.Last()
	if last == nil {
		return false
	}
	return last.IsSuccess()
}
