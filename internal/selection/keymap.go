package selection

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

const keysymEscape xproto.Keysym = 0xff1b

func lookupKeycode(conn *xgb.Conn, setup *xproto.SetupInfo, sym xproto.Keysym) (xproto.Keycode, error) {
	first := setup.MinKeycode
	count := byte(setup.MaxKeycode - setup.MinKeycode + 1)
	reply, err := xproto.GetKeyboardMapping(conn, first, count).Reply()
	if err != nil {
		return 0, fmt.Errorf("keyboard mapping: %w", err)
	}
	code, ok := findKeycode(reply.Keysyms, int(reply.KeysymsPerKeycode), first, sym)
	if !ok {
		return 0, fmt.Errorf("no keycode for keysym 0x%x", uint32(sym))
	}
	return code, nil
}

// findKeycode scans a GetKeyboardMapping table, which lists perCode keysyms
// for each keycode starting at first.
func findKeycode(keysyms []xproto.Keysym, perCode int, first xproto.Keycode, sym xproto.Keysym) (xproto.Keycode, bool) {
	if perCode <= 0 {
		return 0, false
	}
	for i, ks := range keysyms {
		if ks == sym {
			return first + xproto.Keycode(i/perCode), true
		}
	}
	return 0, false
}
