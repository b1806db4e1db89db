package value

// Interner deduplicates string objects so that two equal strings share one
// *Obj, making value equality for strings a pointer compare.
type Interner struct {
	table map[string]*Obj
}

// NewInterner returns an empty interner.
func NewInterner() *Interner {
	return &Interner{table: make(map[string]*Obj)}
}

// Intern returns the canonical *Obj for s, allocating one on first sight.
func (in *Interner) Intern(s string) *Obj {
	if o, ok := in.table[s]; ok {
		return o
	}
	o := &Obj{Kind: ObjString, Str: s}
	in.table[s] = o
	return o
}
