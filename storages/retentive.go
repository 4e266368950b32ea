package storages

import (
	"encoding/gob"
	"errors"
	"io/fs"
	"os"

	"github.com/reusee/softplc/datatables"
)

// Retentive memory: the data table image survives controller restarts by
// writing a snapshot to the configured file and loading it back on start.

func SaveRetentive(path string, snapshot *datatables.Snapshot) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := gob.NewEncoder(f)
	if err := enc.Encode(snapshot); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// LoadRetentive restores a saved image into the table. A missing file is
// not an error: the table simply starts zeroed.
func LoadRetentive(path string, table *datatables.DataTable) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	var snapshot datatables.Snapshot
	dec := gob.NewDecoder(f)
	if err := dec.Decode(&snapshot); err != nil {
		return err
	}

	for prefix, values := range snapshot.Bools {
		for i, v := range values {
			if v {
				table.SetBool(datatables.Addr(prefix, i+1), v)
			}
		}
	}
	for prefix, values := range snapshot.Words {
		for i, v := range values {
			if v != 0 {
				table.SetWord(datatables.Addr(prefix, i+1), v)
			}
		}
	}
	for prefix, values := range snapshot.Floats {
		for i, v := range values {
			if v != 0 {
				table.SetFloat(datatables.Addr(prefix, i+1), v)
			}
		}
	}
	for prefix, values := range snapshot.Strings {
		for i, v := range values {
			if v != "" {
				table.SetString(datatables.Addr(prefix, i+1), v)
			}
		}
	}
	return nil
}
