package file

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// FileOperations defines methods for reading files.
type FileOperations interface {
	IsFileExists(filePath string) (bool, error)
	ReadFileRaw(filePath string) ([]byte, error)
	ReadYamlFile(filePath string, v any) error
}

// FileService implements the FileOperations interface using standard file operations.
type FileService struct{}

// NewFileService creates a new instance of FileService.
func NewFileService() *FileService {
	return &FileService{}
}

// IsFileExists checks if the file exists.
func (fs *FileService) IsFileExists(filePath string) (bool, error) {
	_, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return false, nil
	}

	// err is kept for permission errors
	return err == nil, err
}

// ReadFileRaw reads the contents of the file at filePath.
func (fs *FileService) ReadFileRaw(filePath string) ([]byte, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// ReadYamlFile reads and unmarshals YAML data from the given file.
// Unknown keys are rejected so typos in the config surface early.
func (fs *FileService) ReadYamlFile(filePath string, v any) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(v); err != nil && err != io.EOF {
		return err
	}
	return nil
}
