// Package glob implements the capture-aware glob matcher used to resolve
// config schema mappings, catalog fileMatch entries, and override globs.
//
// The algorithm is an iterative DFS over glob and path with two backtrack
// points: a wildcard register for extending a star's span one byte at a
// time, and a fixed-depth brace stack for {a,b,c} alternation. It is a
// byte-oriented port of the approach described at research.swtch.com/glob,
// extended with brace groups and capture ranges.
package glob

// Range is a byte offset span into the matched path.
type Range struct {
	Start int
	End   int
}

const maxBraceDepth = 10

func isSeparator(c byte) bool {
	return c == '/' || c == '\\'
}

type wildcard struct {
	glob    uint32
	path    uint32
	capture uint32
}

type state struct {
	pathIndex    int
	globIndex    int
	wildcard     wildcard
	globstar     wildcard
	captureIndex int
}

type braceState int

const (
	braceInvalid braceState = iota
	braceComma
	braceEndBrace
)

type braceStack struct {
	stack             [maxBraceDepth]state
	length            int
	longestBraceMatch int
}

func (bs *braceStack) push(s state) state {
	bs.stack[bs.length] = s
	bs.length++
	return state{
		pathIndex:    s.pathIndex,
		globIndex:    s.globIndex + 1,
		captureIndex: s.captureIndex + 1,
	}
}

func (bs *braceStack) pop(s state, captures *[]Range) state {
	bs.length--
	saved := bs.stack[bs.length]
	ns := state{
		pathIndex:    bs.longestBraceMatch - 1,
		globIndex:    s.globIndex,
		wildcard:     saved.wildcard,
		globstar:     saved.globstar,
		captureIndex: saved.captureIndex,
	}
	if bs.length == 0 {
		bs.longestBraceMatch = 0
	}
	ns.extendCapture(captures)
	if captures != nil {
		ns.captureIndex = len(*captures)
	}
	return ns
}

func (bs *braceStack) last() state {
	return bs.stack[bs.length-1]
}

func (s *state) backtrack() {
	s.globIndex = int(s.wildcard.glob)
	s.pathIndex = int(s.wildcard.path)
	s.captureIndex = int(s.wildcard.capture)
}

func (s *state) beginCapture(captures *[]Range, r Range) {
	if captures == nil {
		return
	}
	if s.captureIndex < len(*captures) {
		(*captures)[s.captureIndex] = r
	} else {
		*captures = append(*captures, r)
	}
}

func (s *state) extendCapture(captures *[]Range) {
	if captures == nil || s.captureIndex >= len(*captures) {
		return
	}
	(*captures)[s.captureIndex].End = s.pathIndex
}

func (s *state) endCapture(captures *[]Range) {
	if captures == nil || s.captureIndex >= len(*captures) {
		return
	}
	s.captureIndex++
}

func (s *state) addCharCapture(captures *[]Range) {
	s.endCapture(captures)
	s.beginCapture(captures, Range{s.pathIndex, s.pathIndex + 1})
	s.captureIndex++
}

type step int

const (
	stepContinue step = iota
	stepReturn
	stepBacktrack
)

type matcher struct {
	glob  []byte
	path  []byte
	state state
	brace braceStack
}

// Match reports whether path matches the glob pattern.
func Match(pattern, path string) bool {
	m := &matcher{glob: []byte(pattern), path: []byte(path)}
	return m.run(nil)
}

// MatchWithCaptures reports whether path matches pattern, and if so returns
// the byte ranges captured by each *, ?, [...] and top-level brace
// alternative in the pattern.
func MatchWithCaptures(pattern, path string) ([]Range, bool) {
	var captures []Range
	m := &matcher{glob: []byte(pattern), path: []byte(path)}
	if m.run(&captures) {
		return captures, true
	}
	return nil, false
}

func unescape(glob []byte, idx *int, c *byte) bool {
	if *c == '\\' {
		*idx++
		if *idx >= len(glob) {
			return false
		}
		switch glob[*idx] {
		case 'a':
			*c = '\x61'
		case 'b':
			*c = '\x08'
		case 'n':
			*c = '\n'
		case 'r':
			*c = '\r'
		case 't':
			*c = '\t'
		default:
			*c = glob[*idx]
		}
	}
	return true
}

func (m *matcher) run(captures *[]Range) bool {
	negated := false
	for m.state.globIndex < len(m.glob) && m.glob[m.state.globIndex] == '!' {
		negated = !negated
		m.state.globIndex++
	}

	for m.state.globIndex < len(m.glob) || m.state.pathIndex < len(m.path) {
		if m.state.globIndex < len(m.glob) {
			c := m.glob[m.state.globIndex]
			switch {
			case c == '*':
				switch m.matchStar(captures) {
				case stepContinue:
					continue
				case stepReturn:
					return false
				case stepBacktrack:
				}
			case c == '?' && m.state.pathIndex < len(m.path):
				if !isSeparator(m.path[m.state.pathIndex]) {
					m.state.addCharCapture(captures)
					m.state.globIndex++
					m.state.pathIndex++
					continue
				}
			case c == '[' && m.state.pathIndex < len(m.path):
				switch st, ok := m.matchBracket(captures); st {
				case stepContinue:
					continue
				case stepReturn:
					return ok
				case stepBacktrack:
				}
			case c == '{':
				if m.brace.length >= maxBraceDepth {
					return false
				}
				m.state.endCapture(captures)
				m.state.beginCapture(captures, Range{m.state.pathIndex, m.state.pathIndex})
				snap := m.state
				m.state = m.brace.push(snap)
				continue
			case c == '}' && m.brace.length > 0:
				if m.state.pathIndex+1 > m.brace.longestBraceMatch {
					m.brace.longestBraceMatch = m.state.pathIndex + 1
				}
				m.state.globIndex++
				snap := m.state
				m.state = m.brace.pop(snap, captures)
				continue
			case c == ',' && m.brace.length > 0:
				if m.state.pathIndex+1 > m.brace.longestBraceMatch {
					m.brace.longestBraceMatch = m.state.pathIndex + 1
				}
				m.state.pathIndex = m.brace.last().pathIndex
				m.state.globIndex++
				m.state.wildcard = wildcard{}
				m.state.globstar = wildcard{}
				continue
			case m.state.pathIndex < len(m.path):
				switch m.matchLiteral(captures) {
				case stepContinue:
					continue
				case stepReturn:
					return false
				case stepBacktrack:
				}
			}
		}

		if !m.tryBacktrack(captures, negated) {
			return negated
		}
	}

	if m.brace.length > 0 && m.state.globIndex > 0 && m.glob[m.state.globIndex-1] == '}' {
		m.brace.longestBraceMatch = m.state.pathIndex + 1
		snap := m.state
		m.brace.pop(snap, captures)
	}

	return !negated
}

func (m *matcher) matchStar(captures *[]Range) step {
	isGlobstar := m.state.globIndex+1 < len(m.glob) && m.glob[m.state.globIndex+1] == '*'
	if isGlobstar {
		m.skipGlobstars()
	}

	if captures != nil && (len(*captures) == 0 || m.state.globIndex != int(m.state.wildcard.glob)) {
		m.state.wildcard.capture = uint32(m.state.captureIndex)
		m.state.beginCapture(captures, Range{m.state.pathIndex, m.state.pathIndex})
	} else {
		m.state.extendCapture(captures)
	}

	m.state.wildcard.glob = uint32(m.state.globIndex)
	m.state.wildcard.path = uint32(m.state.pathIndex + 1)

	inGlobstar := false
	if isGlobstar {
		m.state.globIndex += 2
		isEndInvalid := m.state.globIndex != len(m.glob) &&
			!(m.brace.length > 0 && m.state.globIndex < len(m.glob) && (m.glob[m.state.globIndex] == '}' || m.glob[m.state.globIndex] == ','))
		precededBySep := m.state.globIndex < 3 ||
			m.glob[m.state.globIndex-3] == '/' ||
			(m.brace.length > 0 && (m.glob[m.state.globIndex-3] == '{' || m.glob[m.state.globIndex-3] == ','))
		if precededBySep && (!isEndInvalid || m.glob[m.state.globIndex] == '/') {
			if isEndInvalid {
				m.state.endCapture(captures)
				m.state.globIndex++
			}
			m.skipToSeparator(isEndInvalid)
			inGlobstar = true
		}
	} else {
		m.state.globIndex++
	}

	if m.state.pathIndex < len(m.path) && isSeparator(m.path[m.state.pathIndex]) {
		switch {
		case inGlobstar:
			m.state.pathIndex++
		case m.state.globstar.path > 0 && m.state.pathIndex < len(m.path):
			m.state.wildcard = m.state.globstar
		default:
			m.state.wildcard.path = 0
		}
	}

	if m.brace.length > 0 && m.state.globIndex < len(m.glob) &&
		(m.glob[m.state.globIndex] == ',' || m.glob[m.state.globIndex] == '}') {
		if m.skipBraces(captures, false) == braceInvalid {
			return stepReturn
		}
	}

	return stepContinue
}

func (m *matcher) matchBracket(captures *[]Range) (step, bool) {
	m.state.globIndex++
	c := m.path[m.state.pathIndex]

	negated := false
	if m.state.globIndex < len(m.glob) && (m.glob[m.state.globIndex] == '^' || m.glob[m.state.globIndex] == '!') {
		negated = true
		m.state.globIndex++
	}

	first := true
	isMatch := false
	for m.state.globIndex < len(m.glob) && (first || m.glob[m.state.globIndex] != ']') {
		low := m.glob[m.state.globIndex]
		if !unescape(m.glob, &m.state.globIndex, &low) {
			return stepReturn, false
		}
		m.state.globIndex++

		high := low
		if m.state.globIndex+1 < len(m.glob) && m.glob[m.state.globIndex] == '-' && m.glob[m.state.globIndex+1] != ']' {
			m.state.globIndex++
			high = m.glob[m.state.globIndex]
			if !unescape(m.glob, &m.state.globIndex, &high) {
				return stepReturn, false
			}
			m.state.globIndex++
		}

		if low <= c && c <= high {
			isMatch = true
		}
		first = false
	}
	if m.state.globIndex >= len(m.glob) {
		return stepReturn, false
	}
	m.state.globIndex++
	if isMatch != negated {
		m.state.addCharCapture(captures)
		m.state.pathIndex++
		return stepContinue, true
	}
	return stepBacktrack, false
}

func (m *matcher) matchLiteral(captures *[]Range) step {
	c := m.glob[m.state.globIndex]
	idx := m.state.globIndex
	if !unescape(m.glob, &idx, &c) {
		return stepReturn
	}
	m.state.globIndex = idx

	var isMatch bool
	if c == '/' {
		isMatch = isSeparator(m.path[m.state.pathIndex])
	} else {
		isMatch = m.path[m.state.pathIndex] == c
	}

	if isMatch {
		m.state.endCapture(captures)

		if m.brace.length > 0 && m.state.globIndex > 0 && m.glob[m.state.globIndex-1] == '}' {
			m.brace.longestBraceMatch = m.state.pathIndex + 1
			snap := m.state
			m.state = m.brace.pop(snap, captures)
		}
		m.state.globIndex++
		m.state.pathIndex++

		if c == '/' {
			m.state.wildcard = m.state.globstar
		}
		return stepContinue
	}
	return stepBacktrack
}

func (m *matcher) tryBacktrack(captures *[]Range, negated bool) bool {
	if m.state.wildcard.path > 0 && int(m.state.wildcard.path) <= len(m.path) {
		m.state.backtrack()
		return true
	}

	if m.brace.length > 0 {
		switch m.skipBraces(captures, true) {
		case braceInvalid:
			return false
		case braceComma:
			m.state.pathIndex = m.brace.last().pathIndex
			return true
		case braceEndBrace:
			if m.brace.longestBraceMatch > 0 {
				snap := m.state
				m.state = m.brace.pop(snap, captures)
				return true
			}
			m.state = m.brace.last()
			m.brace.length--
			if captures != nil {
				*captures = (*captures)[:m.state.captureIndex]
			}
			if m.state.wildcard.path > 0 && int(m.state.wildcard.path) <= len(m.path) {
				m.state.backtrack()
				return true
			}
		}
	}

	return negated
}

func (m *matcher) skipGlobstars() {
	globIndex := m.state.globIndex + 2
	for globIndex+4 <= len(m.glob) && string(m.glob[globIndex:globIndex+4]) == "/**/" {
		globIndex += 3
	}
	if globIndex+3 == len(m.glob) && string(m.glob[globIndex:]) == "/**" {
		globIndex += 3
	}
	m.state.globIndex = globIndex - 2
}

func (m *matcher) skipToSeparator(isEndInvalid bool) {
	if m.state.pathIndex == len(m.path) {
		m.state.wildcard.path++
		return
	}

	pathIndex := m.state.pathIndex + 1
	for pathIndex < len(m.path) && !isSeparator(m.path[pathIndex]) {
		pathIndex++
	}

	if isEndInvalid && pathIndex == len(m.path) {
		pathIndex++
	}

	m.state.wildcard.path = uint32(pathIndex)
	m.state.globstar = m.state.wildcard
}

func (m *matcher) skipBraces(captures *[]Range, stopOnComma bool) braceState {
	braces := 1
	inBrackets := false
	captureIndex := m.state.captureIndex + 1
	for m.state.globIndex < len(m.glob) && braces > 0 {
		c := m.glob[m.state.globIndex]
		switch {
		case c == '{' && !inBrackets:
			braces++
		case c == '}' && !inBrackets:
			braces--
		case c == ',' && stopOnComma && braces == 1 && !inBrackets:
			m.state.globIndex++
			return braceComma
		case (c == '*' || c == '?' || c == '[') && !inBrackets:
			if c == '[' {
				inBrackets = true
			}
			if captures != nil {
				r := Range{m.state.pathIndex, m.state.pathIndex}
				if captureIndex < len(*captures) {
					(*captures)[captureIndex] = r
				} else {
					*captures = append(*captures, r)
				}
				captureIndex++
			}
			if c == '*' && m.state.globIndex+1 < len(m.glob) && m.glob[m.state.globIndex+1] == '*' {
				m.skipGlobstars()
				m.state.globIndex++
			}
		case c == ']':
			inBrackets = false
		case c == '\\':
			m.state.globIndex++
		}
		m.state.globIndex++
	}

	if braces != 0 {
		return braceInvalid
	}
	return braceEndBrace
}
