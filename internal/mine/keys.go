package mine

// Key layout used by the boxwork runtime. These keys are observable by
// guard conditions and tests, so their shape is fixed.

// EndKey returns the end-flag key (".boxer.B.end") of a boxer.
func EndKey(boxer string) (Key, error) {
	return KeyFrom("", "boxer", boxer, "end")
}

// CountKey returns the redo-counter key (".boxer.B.box.X.count") of a
// box.
func CountKey(boxer, box string) (Key, error) {
	return KeyFrom("", "boxer", boxer, "box", box, "count")
}

// TymeKey returns the entry-tyme mark key (".boxer.B.box.X.tyme") of a
// box, backing the elapsed condition.
func TymeKey(boxer, box string) (Key, error) {
	return KeyFrom("", "boxer", boxer, "box", box, "tyme")
}

// UpdateKey returns the update-mark key of a marked bag key under a
// box: ".boxer.B.box.X.update.<key>". The marked key's own segments are
// appended, dropping its permitted empty leading segment.
func UpdateKey(boxer, box string, key Key) (Key, error) {
	return markKey(boxer, box, "update", key)
}

// ChangeKey returns the change-mark key of a marked bag key under a
// box: ".boxer.B.box.X.change.<key>".
func ChangeKey(boxer, box string, key Key) (Key, error) {
	return markKey(boxer, box, "change", key)
}

func markKey(boxer, box, mark string, key Key) (Key, error) {
	segs := []string{"", "boxer", boxer, "box", box, mark}
	for _, seg := range key.Segs() {
		if seg == "" {
			continue
		}
		segs = append(segs, seg)
	}
	return KeyFrom(segs...)
}
