package inputs

// keyboardState tracks XT scancode-set-1 key press state so that a
// disconnecting client doesn't leave keys stuck down in the guest.
//
// A byte is recorded into keyExt when it was itself 0xE0-prefixed (pushExt
// was set by the immediately preceding byte), and into key otherwise. This
// is the opposite of the reference server's push_ext ? key : key_ext, which
// an 0xE0-prefixed byte would route into the plain key array — the inverted
// mapping here is load-bearing, not a typo: it's what makes an extended key
// like the up-arrow land in keyExt rather than colliding with an unrelated
// plain key at the same low 7 bits.
type keyboardState struct {
	pushExt bool
	key     [0x80]bool
	keyExt  [0x80]bool
}

func newKeyboardState() *keyboardState {
	return &keyboardState{}
}

// PushScan updates tracked key state for one XT scancode byte. It does not
// talk to any back-end; callers forward the byte to the device separately.
func (k *keyboardState) PushScan(scan byte) {
	if scan == 0xe0 {
		k.pushExt = true
		return
	}

	state := &k.key
	if k.pushExt {
		state = &k.keyExt
	}
	k.pushExt = false
	state[scan&0x7f] = scan&0x80 == 0
}

// releaseAll pushes a synthetic release for every position still marked
// pressed, clearing tracked state as it goes. Called on client disconnect so
// the guest never sees a key stuck down because its owning client vanished.
func (k *keyboardState) releaseAll(kbd Keyboard) {
	if kbd == nil {
		return
	}

	for i, pressed := range k.key {
		if !pressed {
			continue
		}
		k.key[i] = false
		kbd.PushScan(byte(i) | 0x80)
	}

	for i, pressed := range k.keyExt {
		if !pressed {
			continue
		}
		k.keyExt[i] = false
		kbd.PushScan(0xe0)
		kbd.PushScan(byte(i) | 0x80)
	}
}
