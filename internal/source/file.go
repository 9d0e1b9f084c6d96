package source

import (
	"crypto/sha256"
	"os"

	"fortio.org/safecast"
)

type (
	// FileFlags encodes metadata about how a file's content was loaded.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File is one Verilog source unit as an ordered line sequence.
type File struct {
	Path  string
	Lines []Line
	Hash  [32]byte
	Flags FileFlags
}

// Load reads a file from disk, normalizing CRLF line endings and stripping a
// UTF-8 BOM before splitting into lines.
func Load(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f := &File{Path: path, Hash: sha256.Sum256(content)}

	content, hadBOM := removeBOM(content)
	if hadBOM {
		f.Flags |= FileHadBOM
	}
	content, changed := normalizeCRLF(content)
	if changed {
		f.Flags |= FileNormalizedCRLF
	}

	f.Lines = SplitLines(string(content))
	return f, nil
}

// NewVirtual builds an in-memory File, mainly for tests and stdin input.
func NewVirtual(name, text string) *File {
	return &File{
		Path:  name,
		Lines: SplitLines(text),
		Hash:  sha256.Sum256([]byte(text)),
		Flags: FileVirtual,
	}
}

// LineCount returns the number of lines, safe for narrow counters.
func (f *File) LineCount() uint32 {
	n, err := safecast.Conv[uint32](len(f.Lines))
	if err != nil {
		// файл с 4 млрд строк — не наш случай, но не паникуем
		return ^uint32(0)
	}
	return n
}

// Text renders the file's current line sequence back to source text.
func (f *File) Text() string { return JoinLines(f.Lines) }
