package dataset

import (
	"os"
	"slices"
	"sync"

	"github.com/boyter/gocodewalker"
)

// Collect expands files and directories into dataset paths. Directories are
// walked for .csv files, respecting .gitignore; files are taken as given.
// The result is sorted.
func Collect(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			files = append(files, arg)

			continue
		}

		err = walkDir(arg, func(path string) {
			files = append(files, path)
		})
		if err != nil {
			return nil, err
		}
	}

	slices.Sort(files)

	return slices.Compact(files), nil
}

// Load collects and reads every dataset named by args.
func Load(args []string) ([]*Case, error) {
	files, err := Collect(args)
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, ErrNoDatasets
	}

	var cases []*Case

	for _, f := range files {
		cs, err := LoadCSV(f)
		if err != nil {
			return nil, err
		}

		cases = append(cases, cs...)
	}

	return cases, nil
}

// walkDir walks a directory for .csv files, respecting .gitignore.
func walkDir(root string, callback func(path string)) error {
	fileListQueue := make(chan *gocodewalker.File, 100)

	fileWalker := gocodewalker.NewFileWalker(root, fileListQueue)
	fileWalker.AllowListExtensions = []string{"csv"}

	var walkErr error
	fileWalker.SetErrorHandler(func(e error) bool {
		walkErr = e
		return true
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for f := range fileListQueue {
			callback(f.Location)
		}
	}()

	if err := fileWalker.Start(); err != nil {
		return err
	}

	wg.Wait()
	return walkErr
}
