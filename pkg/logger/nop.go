package logger

// Nop discards everything. Handy default for tests.
type Nop struct{}

func NewNop() Nop { return Nop{} }

func (Nop) Debug(string, ...Field) {}
func (Nop) Info(string, ...Field)  {}
func (Nop) Warn(string, ...Field)  {}
func (Nop) Error(string, ...Field) {}

func (n Nop) With(...Field) Logger { return n }
