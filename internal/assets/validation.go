package assets

import "fmt"

// maxAssetNameLen bounds style and template names read from config.
const maxAssetNameLen = 64

// ValidateAssetName accepts names such as "default" or "document": ASCII
// letters, digits, '-' and '_', at most 64 bytes. The loaders append the
// extension themselves, so a name never carries one.
func ValidateAssetName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidAssetName)
	case len(name) > maxAssetNameLen:
		return fmt.Errorf("%w: %q is longer than %d bytes", ErrInvalidAssetName, name, maxAssetNameLen)
	}
	for i := 0; i < len(name); i++ {
		if !isNameByte(name[i]) {
			return fmt.Errorf("%w: %q has %q at byte %d", ErrInvalidAssetName, name, name[i], i)
		}
	}
	return nil
}

func isNameByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '-' || b == '_'
}
