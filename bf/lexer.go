package bf

// Command is a single brainfuck instruction, tagged by its source character.
type Command rune

const (
	Increment Command = '+'
	Decrement Command = '-'
	Left      Command = '<'
	Right     Command = '>'
	Output    Command = '.'
	Input     Command = ','
	LoopStart Command = '['
	LoopEnd   Command = ']'
	Ignore    Command = ' '
)

func parse(c rune) Command {
	switch c {
	case '+':
		return Increment
	case '-':
		return Decrement
	case '>':
		return Right
	case '<':
		return Left
	case '.':
		return Output
	case ',':
		return Input
	case '[':
		return LoopStart
	case ']':
		return LoopEnd
	default:
		return Ignore
	}
}

func (c Command) String() string {
	if c == Ignore || parse(rune(c)) == Ignore {
		return " "
	}
	return string(rune(c))
}

// PreLex strips everything that is not an instruction character.
func PreLex(input string) string {
	var result []rune
	for _, c := range input {
		if parse(c) != Ignore {
			result = append(result, c)
		}
	}
	return string(result)
}

// Program is a tokenized source. Commands, Pos and Match are indexed by
// program position.
type Program struct {
	Commands []Command
	// Pos is the 1-based character index of each command in the source.
	Pos []int
	// Match holds the position of the partner of each paired bracket. It is
	// -1 for unmatched brackets and for all other commands.
	Match []int
}

func (p *Program) Len() int {
	return len(p.Commands)
}

func (p *Program) String() string {
	runes := make([]rune, len(p.Commands))
	for i, c := range p.Commands {
		runes[i] = rune(c)
	}
	return string(runes)
}

type Lexer struct {
	chars string
}

func NewLexer(input string) *Lexer {
	return &Lexer{
		chars: input,
	}
}

// Lex returns the instruction sequence of the source.
func (l *Lexer) Lex() []Command {
	return l.Compile().Commands
}

// Compile tokenizes the source and pairs up the loop brackets. It never
// fails: unbalanced brackets are left with a -1 match and reported only when
// execution reaches them.
func (l *Lexer) Compile() *Program {
	p := &Program{
		Commands: []Command{},
		Pos:      []int{},
		Match:    []int{},
	}
	var open []int
	index := 0
	for _, c := range l.chars {
		index++
		cmd := parse(c)
		if cmd == Ignore {
			continue
		}
		at := len(p.Commands)
		p.Commands = append(p.Commands, cmd)
		p.Pos = append(p.Pos, index)
		p.Match = append(p.Match, -1)
		switch cmd {
		case LoopStart:
			open = append(open, at)
		case LoopEnd:
			if len(open) == 0 {
				break
			}
			start := open[len(open)-1]
			open = open[:len(open)-1]
			p.Match[start] = at
			p.Match[at] = start
		}
	}
	return p
}

func Lex(input string) []Command {
	return NewLexer(input).Lex()
}

func Compile(input string) *Program {
	return NewLexer(input).Compile()
}
