// Package materialize turns CTFd challenge records into local directories.
package materialize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dimasma0305/ctfdsync/function/log"
	"github.com/dimasma0305/ctfdsync/function/scraper/ctfd"
	"github.com/dimasma0305/ctfdsync/function/scraper/templater"
	"github.com/dimasma0305/ctfdsync/function/utils"
)

const (
	ReadmeFile          = "README.md"
	UncategorizedFolder = "uncategorized"
)

var ErrFilesystem = errors.New("filesystem error")

type Status string

const (
	StatusCreated Status = "created"
	StatusSkipped Status = "skipped"
	StatusPartial Status = "partial"
)

// Fetcher downloads attachment bytes. *ctfd.Client implements it.
type Fetcher interface {
	DownloadFile(ctx context.Context, fu ctfd.FileRef) ([]byte, error)
}

type Outcome struct {
	Dir        string
	Status     Status
	Downloaded []string
	Skipped    []string
	Warnings   []string
}

func (o *Outcome) warn(format string, elem ...any) {
	msg := fmt.Sprintf(format, elem...)
	log.WarnH2("%s", msg)
	o.Warnings = append(o.Warnings, msg)
}

type Materializer struct {
	Root    string
	Fetcher Fetcher
}

func New(root string, fetcher Fetcher) *Materializer {
	return &Materializer{Root: root, Fetcher: fetcher}
}

// Dir is the directory a challenge is written to. It only depends on the
// category, the name and, for unnamed challenges, the id.
func (m *Materializer) Dir(chall *ctfd.Challenge) string {
	category := utils.Sanitize(chall.Category)
	if category == "" {
		category = UncategorizedFolder
	}
	name := utils.Sanitize(chall.Name)
	if name == "" {
		name = "challenge-" + strconv.Itoa(chall.Id)
	}
	return filepath.Join(m.Root, category, name)
}

// Materialize writes the README of chall and downloads every attachment that
// is not on disk yet. Attachment failures are reported as warnings; only a
// failure to create the directory or the README is returned as an error.
func (m *Materializer) Materialize(ctx context.Context, chall *ctfd.Challenge) (Outcome, error) {
	out := Outcome{Dir: m.Dir(chall)}

	_, statErr := os.Stat(out.Dir)
	existed := statErr == nil
	if err := os.MkdirAll(out.Dir, 0755); err != nil {
		return out, fmt.Errorf("%w: create %s: %w", ErrFilesystem, out.Dir, err)
	}

	names := fileNames(chall.Files)
	if err := m.writeReadme(out.Dir, chall, names); err != nil {
		return out, err
	}

	if len(chall.Files) == 0 {
		out.warn("%s (%s) has no attachments", chall.Name, chall.Category)
	}

	failed := false
	for i, file := range chall.Files {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		dst := filepath.Join(out.Dir, names[i])
		if utils.FileExists(dst) {
			out.Skipped = append(out.Skipped, names[i])
			log.DebugH3("already downloaded: %s", dst)
			continue
		}
		data, err := m.Fetcher.DownloadFile(ctx, file)
		if err != nil {
			failed = true
			out.warn("%s: could not download %s: %v", chall.Name, names[i], err)
			continue
		}
		if err := utils.WriteFileAtomic(dst, data, 0644); err != nil {
			failed = true
			out.warn("%s: %v", chall.Name, fmt.Errorf("%w: %w", ErrFilesystem, err))
			continue
		}
		out.Downloaded = append(out.Downloaded, names[i])
	}

	switch {
	case failed:
		out.Status = StatusPartial
	case existed && len(out.Downloaded) == 0:
		out.Status = StatusSkipped
	default:
		out.Status = StatusCreated
	}
	return out, nil
}

type readmeView struct {
	*ctfd.Challenge
	Description string
	Files       []string
}

func (m *Materializer) writeReadme(dir string, chall *ctfd.Challenge, files []string) error {
	view := readmeView{Challenge: chall, Description: chall.Description, Files: files}
	if view.Description == "" {
		view.Description = "No description provided"
	}
	data, err := templater.Render(templater.CTFDReadme, view)
	if err != nil {
		return fmt.Errorf("render readme for %s: %w", chall.Name, err)
	}
	if err := utils.WriteFileAtomic(filepath.Join(dir, ReadmeFile), data, 0644); err != nil {
		return fmt.Errorf("%w: %w", ErrFilesystem, err)
	}
	return nil
}

// fileNames maps attachments to local names. A path without a usable last
// segment gets its position, and an attachment never shadows the README.
func fileNames(files []ctfd.FileRef) []string {
	names := make([]string, len(files))
	for i, file := range files {
		name := file.FileName()
		switch {
		case name == "":
			name = "attachment-" + strconv.Itoa(i+1)
		case strings.EqualFold(name, ReadmeFile):
			name = "attachment-" + name
		}
		names[i] = name
	}
	return names
}
