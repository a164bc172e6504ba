package extension

// listeners is an ordered, named list of listener funcs.  Callers must hold the owning broker's
// lock.
type listeners[F any] struct {
	names []string
	funcs []F
}

// put appends f under name, replacing any existing entry with the same name.
func (l *listeners[F]) put(name string, f F) {
	l.remove(name)
	l.names = append(l.names, name)
	l.funcs = append(l.funcs, f)
}

func (l *listeners[F]) remove(name string) {
	for i, entry := range l.names {
		if entry == name {
			l.names = append(l.names[:i], l.names[i+1:]...)
			l.funcs = append(l.funcs[:i], l.funcs[i+1:]...)
			return
		}
	}
}
