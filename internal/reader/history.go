package reader

// DefaultHistorySize caps the history when no size is configured.
const DefaultHistorySize = 1000

// SetHistory replaces the history list and moves to the live entry.
func (r *Reader) SetHistory(entries []string) {
	r.history = append([]string(nil), entries...)
	r.historyi = len(r.history)
	r.transient = make(map[int]string)
}

// History returns a copy of the history list, oldest first.
func (r *Reader) History() []string {
	return append([]string(nil), r.history...)
}

// HistoryIndex reports which entry is being edited; len(History()) is the
// live buffer.
func (r *Reader) HistoryIndex() int {
	return r.historyi
}

// item returns entry i as currently edited.
func (r *Reader) item(i int) string {
	if t, ok := r.transient[i]; ok {
		return t
	}
	if i < len(r.history) {
		return r.history[i]
	}
	return ""
}

// selectItem swaps the buffer for entry i, keeping edits to the entry being
// left in the transient map.
func (r *Reader) selectItem(i int) {
	r.transient[r.historyi] = string(r.buffer)
	r.buffer = []rune(r.item(i))
	r.historyi = i
	r.pos = len(r.buffer)
	r.stickyY = -1
	r.dirty = true
}

// commitHistory writes transient edits back and records the accepted text.
func (r *Reader) commitHistory(text string) {
	for i, t := range r.transient {
		if i < len(r.history) && i != r.historyi {
			r.history[i] = t
		}
	}
	r.transient = make(map[int]string)
	if text != "" && (len(r.history) == 0 || r.history[len(r.history)-1] != text) {
		r.history = append(r.history, text)
	}
	if over := len(r.history) - r.historySize; over > 0 {
		r.history = append(r.history[:0], r.history[over:]...)
	}
	r.historyi = len(r.history)
}

// column returns the goal column for vertical motion. Repeated up/down, and
// every step of a counted one, keep aiming at the column they started from.
func (r *Reader) column(bol int) int {
	if (r.lastName == "up" || r.lastName == "down") && r.stickyY >= 0 {
		return r.stickyY
	}
	return r.pos - bol
}

func cmdUp(r *Reader, c *Command) error {
	col := r.column(r.BOL(-1))
	r.stickyY = col
	for i := 0; i < r.GetArg(1); i++ {
		bol1 := r.BOL(-1)
		if bol1 == 0 {
			if r.historyi > 0 {
				r.selectItem(r.historyi - 1)
				return nil
			}
			r.pos = 0
			r.Error("start of buffer")
			return nil
		}
		bol2 := r.BOL(bol1 - 1)
		if col > bol1-bol2-1 {
			r.pos = bol1 - 1
		} else {
			r.pos = bol2 + col
		}
	}
	return nil
}

func cmdDown(r *Reader, c *Command) error {
	col := r.column(r.BOL(-1))
	r.stickyY = col
	for i := 0; i < r.GetArg(1); i++ {
		eol1 := r.EOL(-1)
		if eol1 == len(r.buffer) {
			if r.historyi < len(r.history) {
				r.selectItem(r.historyi + 1)
				r.pos = r.EOL(0)
				return nil
			}
			r.pos = len(r.buffer)
			r.Error("end of buffer")
			return nil
		}
		eol2 := r.EOL(eol1 + 1)
		if col > eol2-eol1-1 {
			r.pos = eol2
		} else {
			r.pos = eol1 + col + 1
		}
	}
	return nil
}

func cmdPreviousHistory(r *Reader, c *Command) error {
	if r.historyi == 0 {
		r.Error("start of history list")
		return nil
	}
	r.selectItem(r.historyi - 1)
	return nil
}

func cmdNextHistory(r *Reader, c *Command) error {
	if r.historyi >= len(r.history) {
		r.Error("end of history list")
		return nil
	}
	r.selectItem(r.historyi + 1)
	return nil
}

func cmdBeginningOfHistory(r *Reader, c *Command) error {
	if len(r.history) == 0 || r.historyi == 0 {
		return nil
	}
	r.selectItem(0)
	return nil
}

func cmdEndOfHistory(r *Reader, c *Command) error {
	if r.historyi == len(r.history) {
		return nil
	}
	r.selectItem(len(r.history))
	return nil
}
