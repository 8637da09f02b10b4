package validator

import "sort"

//
// Table is an immutable mapping from response codes to human-readable messages. Tables are built
// once, at package initialization, and shared by reference.
//
type Table struct {
	messages map[string]string
}

//
// NewTable merges the given mappings into a new table. Later mappings win on duplicate codes.
// The inputs are copied, so mutating them afterwards has no effect on the table.
//
func NewTable(mappings ...map[string]string) *Table {
	t := &Table{messages: make(map[string]string)}

	for _, m := range mappings {
		for code, msg := range m {
			t.messages[code] = msg
		}
	}

	return t
}

//
// Lookup returns the message for code and whether the table knows it.
//
func (o *Table) Lookup(code string) (string, bool) {
	msg, ok := o.messages[code]

	return msg, ok
}

func (o *Table) Len() int {
	return len(o.messages)
}

//
// Codes returns every code in the table, sorted.
//
func (o *Table) Codes() []string {
	codes := make([]string, 0, len(o.messages))

	for code := range o.messages {
		codes = append(codes, code)
	}

	sort.Strings(codes)

	return codes
}
