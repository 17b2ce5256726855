// Package printing renders thermal receipts and the raw printer commands
// that accompany them.
package printing

import "bytes"

// ESC/POS command sequences. The drawer open command is ESC p m t1 t2:
// pin 0, 25ms on, 250ms off. Some printer models need the alternative
// 60ms/120ms timing.
var (
	cmdInit          = []byte{0x1B, 0x40}
	cmdAlignLeft     = []byte{0x1B, 0x61, 0x00}
	cmdAlignCenter   = []byte{0x1B, 0x61, 0x01}
	cmdBoldOn        = []byte{0x1B, 0x45, 0x01}
	cmdBoldOff       = []byte{0x1B, 0x45, 0x00}
	cmdOpenDrawer    = []byte{0x1B, 0x70, 0x00, 0x19, 0xFA}
	cmdOpenDrawerAlt = []byte{0x1B, 0x70, 0x00, 0x3C, 0x78}
	cmdPartialCut    = []byte{0x1D, 0x56, 0x01}
	cmdFullCut       = []byte{0x1D, 0x56, 0x00}
)

// OpenDrawerCommand returns the standalone drawer kick sequence. Set alt for
// printers that need the longer pulse timing.
func OpenDrawerCommand(alt bool) []byte {
	if alt {
		return append([]byte(nil), cmdOpenDrawerAlt...)
	}
	return append([]byte(nil), cmdOpenDrawer...)
}

// CommandBuffer assembles an ESC/POS print job.
type CommandBuffer struct {
	buf bytes.Buffer
}

// NewCommandBuffer starts a job with the printer reset to its defaults.
func NewCommandBuffer() *CommandBuffer {
	b := &CommandBuffer{}
	b.buf.Write(cmdInit)
	return b
}

// Text appends raw text. The caller is responsible for line breaks.
func (b *CommandBuffer) Text(s string) *CommandBuffer {
	b.buf.WriteString(s)
	return b
}

// Line appends text followed by a line feed.
func (b *CommandBuffer) Line(s string) *CommandBuffer {
	b.buf.WriteString(s)
	b.buf.WriteByte('\n')
	return b
}

// Feed appends n blank lines.
func (b *CommandBuffer) Feed(n int) *CommandBuffer {
	for i := 0; i < n; i++ {
		b.buf.WriteByte('\n')
	}
	return b
}

// AlignLeft switches to left-aligned printing.
func (b *CommandBuffer) AlignLeft() *CommandBuffer {
	b.buf.Write(cmdAlignLeft)
	return b
}

// AlignCenter switches to centered printing.
func (b *CommandBuffer) AlignCenter() *CommandBuffer {
	b.buf.Write(cmdAlignCenter)
	return b
}

// Bold prints the given text emphasized, then restores normal weight.
func (b *CommandBuffer) Bold(s string) *CommandBuffer {
	b.buf.Write(cmdBoldOn)
	b.buf.WriteString(s)
	b.buf.Write(cmdBoldOff)
	return b
}

// OpenDrawer appends the drawer kick sequence.
func (b *CommandBuffer) OpenDrawer() *CommandBuffer {
	b.buf.Write(cmdOpenDrawer)
	return b
}

// PartialCut appends a partial paper cut.
func (b *CommandBuffer) PartialCut() *CommandBuffer {
	b.buf.Write(cmdPartialCut)
	return b
}

// FullCut appends a full paper cut.
func (b *CommandBuffer) FullCut() *CommandBuffer {
	b.buf.Write(cmdFullCut)
	return b
}

// Bytes returns the assembled job.
func (b *CommandBuffer) Bytes() []byte {
	return b.buf.Bytes()
}
