package engine

import "fmt"

// Builder accumulates settings and produces a Config. Later assignments
// to the same field win.
type Builder struct {
	cfg Config
}

func NewBuilder(base Config) *Builder {
	return &Builder{cfg: base}
}

func (b *Builder) SetMaxWidth(n int) { b.cfg.maxWidth = n }
func (b *Builder) SetHardTabs(v bool) { b.cfg.hardTabs = v }
func (b *Builder) SetTabSpaces(n int) { b.cfg.tabSpaces = n }
func (b *Builder) SetNewlineStyle(s NewlineStyle) { b.cfg.newlineStyle = s }
func (b *Builder) SetEdition(v string) { b.cfg.edition = v }
func (b *Builder) SetEmitMode(m EmitMode) { b.cfg.emitMode = m }

// Override parses value for key and applies it. The builder is unchanged
// when an error is returned.
func (b *Builder) Override(key, value string) error {
	opt, ok := options[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	v, err := opt.parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	opt.apply(&b.cfg, v)
	return nil
}

// Build returns the accumulated Config.
func (b *Builder) Build() Config {
	return b.cfg
}
