package compiler

import (
	"strings"

	"github.com/rbxtools/rbxc/internal/config"
)

// Kind is the closed set of file-classification variants. Every file
// in the source tree maps to exactly one of these.
type Kind int

const (
	// KindServerScript is a server-side script ("Script").
	KindServerScript Kind = iota
	// KindLocalScript is a client-side script ("LocalScript").
	KindLocalScript
	// KindModuleScript is a plain source module ("ModuleScript").
	KindModuleScript
	// KindStringValue is plain text data ("StringValue").
	KindStringValue
	// KindAsset is an integer asset reference ("IntValue").
	KindAsset
	// KindCommented is the fallback for unrecognized extensions: a
	// disabled script whose source is the raw content wrapped in a
	// comment block, inert but inspectable.
	KindCommented
)

// String returns the variant name for display.
func (k Kind) String() string {
	switch k {
	case KindServerScript:
		return "server-script"
	case KindLocalScript:
		return "local-script"
	case KindModuleScript:
		return "module-script"
	case KindStringValue:
		return "string-value"
	case KindAsset:
		return "asset"
	case KindCommented:
		return "commented"
	}
	return "unknown"
}

// IsScript reports whether the variant carries Lua source.
func (k Kind) IsScript() bool {
	switch k {
	case KindServerScript, KindLocalScript, KindModuleScript:
		return true
	}
	return false
}

// Classification is the result of classifying one file.
type Classification struct {
	Kind Kind
	// Name is the node name: the file stem before the first dot.
	Name string
	// Chunked is set when the file's free-text content exceeds the
	// maximum value length and must be stored as an ordered chunk
	// container instead of a single string property.
	Chunked bool
}

// Classify maps a file to its instance variant. It is a pure function
// of the file name, content length and position, so it is testable
// without touching the filesystem.
//
// Reserved entry names win at the top level regardless of extension.
// Otherwise dispatch is on the (case-insensitive) extension, with the
// secondary segment of .lua files selecting the script kind.
func Classify(filename string, contentLen int, topLevel bool, entry config.EntryConfig, maxLen int) Classification {
	cls := Classification{Name: stem(filename)}

	switch {
	case topLevel && cls.Name == entry.Server:
		cls.Kind = KindServerScript
	case topLevel && cls.Name == entry.Client:
		cls.Kind = KindLocalScript
	default:
		cls.Kind = kindForExtension(filename)
	}

	// Asset content is numeric, never chunked; every other variant
	// carries free text subject to the length ceiling.
	if cls.Kind != KindAsset && contentLen > maxLen {
		cls.Chunked = true
	}

	return cls
}

// stem returns the file name up to the first dot.
func stem(filename string) string {
	if i := strings.IndexByte(filename, '.'); i >= 0 {
		return filename[:i]
	}
	return filename
}

// kindForExtension dispatches on the last dot-separated segment.
func kindForExtension(filename string) Kind {
	parts := strings.Split(filename, ".")
	if len(parts) == 1 {
		// No extension at all.
		return KindCommented
	}
	ext := strings.ToLower(parts[len(parts)-1])

	switch ext {
	case "lua", "luau":
		// The secondary segment, between the last two dots, selects
		// the script kind: script.server.lua, gui.client.lua.
		secondary := ""
		if len(parts) >= 3 {
			secondary = strings.ToLower(parts[len(parts)-2])
		}
		switch secondary {
		case "server":
			return KindServerScript
		case "client", "local":
			return KindLocalScript
		default:
			return KindModuleScript
		}
	case "txt":
		return KindStringValue
	case "asset":
		return KindAsset
	default:
		return KindCommented
	}
}

// IsLuaSource reports whether the file name carries a Lua source
// extension, the precondition for the syntax pre-check.
func IsLuaSource(filename string) bool {
	parts := strings.Split(filename, ".")
	ext := strings.ToLower(parts[len(parts)-1])
	return len(parts) > 1 && (ext == "lua" || ext == "luau")
}
