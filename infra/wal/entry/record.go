package entry

// headerSize is [type:1][seq:8][time:8][len:4].
const headerSize = 21

// Record is one journaled command. Type is owned by the caller.
type Record struct {
	Type uint8
	Seq  uint64
	Time int64
	Data []byte
}
