package parser

// symbolSet records names only to decide between a declaration and an
// expression. It is not a scope chain.
type symbolSet map[string]struct{}

func (s symbolSet) add(name string) {
	if name != "" {
		s[name] = struct{}{}
	}
}

func (s symbolSet) has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s symbolSet) reset() {
	clear(s)
}

// declare records a variable-like name (variable, parameter, function, enum
// constant) in the set for the current context.
func (p *Parser) declare(name string) {
	if p.inFunction {
		p.locals.add(name)
	} else {
		p.globals.add(name)
	}
}

// isVariable reports whether name was declared as a value in the current
// function or at file scope.
func (p *Parser) isVariable(name string) bool {
	return p.locals.has(name) || p.globals.has(name)
}

// isTypedef reports whether name was introduced by a typedef.
func (p *Parser) isTypedef(name string) bool {
	return p.typedefs.has(name) && !p.locals.has(name)
}

// enterFunction marks a function boundary: the local set starts empty.
func (p *Parser) enterFunction(params []string) {
	p.locals.reset()
	p.inFunction = true
	for _, name := range params {
		p.locals.add(name)
	}
}

func (p *Parser) leaveFunction() {
	p.locals.reset()
	p.inFunction = false
}
