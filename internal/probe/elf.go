package probe

import (
	"debug/elf"

	"github.com/pkg/errors"
)

// RTTSymbol is the control block every SEGGER RTT firmware exports.
const RTTSymbol = "_SEGGER_RTT"

// ErrSymbolNotFound is returned when the ELF has no RTT control block.
var ErrSymbolNotFound = errors.New("symbol not found")

// RTTAddress returns the address of the RTT control block in the ELF at path.
func RTTAddress(path string) (uint64, error) {
	return SymbolAddress(path, RTTSymbol)
}

// SymbolAddress returns the value of the named symbol.
func SymbolAddress(path, name string) (uint64, error) {
	f, err := elf.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "open elf %s", path)
	}
	defer func() { _ = f.Close() }()

	syms, err := f.Symbols()
	if err != nil {
		return 0, errors.Wrapf(err, "read symbols of %s", path)
	}
	for _, s := range syms {
		if s.Name == name {
			return s.Value, nil
		}
	}
	return 0, errors.Wrapf(ErrSymbolNotFound, "%s in %s", name, path)
}
