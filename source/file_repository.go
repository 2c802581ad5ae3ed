package source

import "os"

// FileRepository reads the desired-state document from a local file.
type FileRepository struct {
	document
	Name string
	Path string
}

// GetName returns the name of the configuration source.
func (f *FileRepository) GetName() string {
	return f.Name
}

// Refresh reads the file again. A missing or malformed file keeps the
// previous copy.
func (f *FileRepository) Refresh() error {
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return failed(f.Name, "error reading file", err)
	}
	if err := f.load(raw); err != nil {
		return failed(f.Name, "error unmarshalling file", err)
	}
	return nil
}
