// Copyright © 2026 Plato contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/parser/parser.go
// Summary: VT100/ANSI byte-stream state machine feeding a VTerm.
// Notes: Input arrives in arbitrary chunks; escape sequences and UTF-8
// runes may be split across Parse calls.

package parser

import "unicode/utf8"

type state int

const (
	stateGround state = iota
	stateEscape
	stateCSI
	stateOSC
	stateCharset
)

// Parser decodes a terminal byte stream and applies it to a VTerm.
type Parser struct {
	state        state
	vterm        *VTerm
	params       []int
	currentParam int
	private      bool
	oscBuffer    []byte
	runeBuffer   []byte
}

// NewParser creates a parser bound to a virtual terminal.
func NewParser(v *VTerm) *Parser {
	return &Parser{
		state:      stateGround,
		vterm:      v,
		params:     make([]int, 0, 16),
		oscBuffer:  make([]byte, 0, 128),
		runeBuffer: make([]byte, 0, utf8.UTFMax),
	}
}

// Parse processes a chunk of bytes read from the pty.
func (p *Parser) Parse(data []byte) {
	for _, b := range data {
		switch p.state {
		case stateGround:
			p.parseGround(b)
		case stateEscape:
			p.parseEscape(b)
		case stateCSI:
			p.parseCSI(b)
		case stateOSC:
			// Terminated by BEL or by ST (ESC \); content is ignored.
			if b == 0x07 {
				p.state = stateGround
			} else if b == 0x1b {
				p.state = stateEscape
			} else if len(p.oscBuffer) < 128 {
				p.oscBuffer = append(p.oscBuffer, b)
			}
		case stateCharset:
			p.state = stateGround
		}
	}
}

func (p *Parser) parseGround(b byte) {
	if b >= 0x80 || len(p.runeBuffer) > 0 {
		p.parseRuneByte(b)
		return
	}
	switch b {
	case 0x1b:
		p.state = stateEscape
	case '\n', 0x0b, 0x0c:
		p.vterm.lineFeed()
	case '\r':
		p.vterm.carriageReturn()
	case '\b':
		p.vterm.backspace()
	case '\t':
		p.vterm.tab()
	case 0x07:
		p.vterm.bell()
	case 0x00, 0x0e, 0x0f:
		// NUL and charset shifts: ignored.
	default:
		if b >= 0x20 {
			p.vterm.placeRune(rune(b))
		}
	}
}

// parseRuneByte accumulates multi-byte UTF-8 sequences that may span
// read chunks.
func (p *Parser) parseRuneByte(b byte) {
	p.runeBuffer = append(p.runeBuffer, b)
	if !utf8.FullRune(p.runeBuffer) {
		if len(p.runeBuffer) >= utf8.UTFMax {
			p.runeBuffer = p.runeBuffer[:0]
		}
		return
	}
	r, _ := utf8.DecodeRune(p.runeBuffer)
	p.runeBuffer = p.runeBuffer[:0]
	if r != utf8.RuneError {
		p.vterm.placeRune(r)
	}
}

func (p *Parser) parseEscape(b byte) {
	switch b {
	case '[':
		p.state = stateCSI
		p.params = p.params[:0]
		p.currentParam = 0
		p.private = false
	case ']':
		p.state = stateOSC
		p.oscBuffer = p.oscBuffer[:0]
	case '(', ')':
		p.state = stateCharset
	case 'D':
		p.vterm.lineFeed()
		p.state = stateGround
	case 'M':
		p.vterm.moveCursorUp(1)
		p.state = stateGround
	case 'E':
		p.vterm.carriageReturn()
		p.vterm.lineFeed()
		p.state = stateGround
	case '7':
		p.vterm.saveCursor()
		p.state = stateGround
	case '8':
		p.vterm.restoreCursor()
		p.state = stateGround
	case 'c':
		p.vterm.clearScreen()
		p.vterm.setCursorPos(0, 0)
		p.vterm.resetAttributes()
		p.state = stateGround
	default:
		p.state = stateGround
	}
}

func (p *Parser) parseCSI(b byte) {
	switch {
	case b >= '0' && b <= '9':
		p.currentParam = p.currentParam*10 + int(b-'0')
	case b == ';':
		p.params = append(p.params, p.currentParam)
		p.currentParam = 0
	case b == '?':
		p.private = true
	case b >= '@' && b <= '~':
		p.params = append(p.params, p.currentParam)
		p.vterm.processCSI(b, p.params, p.private)
		p.state = stateGround
	}
	// Intermediate bytes (space, '>', '!') are silently skipped.
}
