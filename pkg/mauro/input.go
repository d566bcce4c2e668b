package mauro

// InputKind tags an InputSelection.
type InputKind int

const (
	InputSingleFile InputKind = iota
	InputDirectory
)

// InputSelection is either exactly one named file or one directory
// whose files with Extension are imported (non-recursive).
type InputSelection struct {
	Kind      InputKind
	Path      string
	Extension string
}

// SingleFile selects one explicitly named file.
func SingleFile(path string) InputSelection {
	return InputSelection{Kind: InputSingleFile, Path: path}
}

// Directory selects every file with ext directly inside dir.
func Directory(dir, ext string) InputSelection {
	if ext == "" {
		ext = DefaultExtension
	}
	return InputSelection{Kind: InputDirectory, Path: dir, Extension: ext}
}

// FileScanner turns an InputSelection into the concrete ordered file list.
type FileScanner interface {
	Discover(sel InputSelection) ([]string, error)
}
