// Package page provides a file-backed live document: an HTML snapshot on
// disk, re-parsed whenever the file changes, exposing the same document
// surface the scanners consume. Capture tooling appends to the snapshot as
// the source view renders, so file writes play the role of DOM mutations.
package page

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fsnotify/fsnotify"
)

// FileDocument watches one HTML snapshot file. Root and URL always reflect
// the last successful parse; a half-written or briefly missing file keeps the
// previous state rather than presenting an empty document.
type FileDocument struct {
	path string

	fw   *fsnotify.Watcher
	done chan struct{}

	mu   sync.Mutex
	doc  *goquery.Document
	url  string
	stop bool

	mutations     chan struct{}
	intersections chan struct{}
	scrolls       chan struct{}
}

// Open parses the snapshot at path and starts watching it. The parent
// directory is watched rather than the file itself: editors and capture
// tools commonly save via rename-replace, which drops a plain file watch.
func Open(path string) (*FileDocument, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	d := &FileDocument{
		path:          abs,
		done:          make(chan struct{}),
		mutations:     make(chan struct{}, 4),
		intersections: make(chan struct{}, 4),
		scrolls:       make(chan struct{}, 4),
	}
	if err := d.reload(); err != nil {
		return nil, fmt.Errorf("page: open %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}
	d.fw = fw

	go d.watch()
	return d, nil
}

func (d *FileDocument) watch() {
	// editors fire several events per save
	const debounce = 50 * time.Millisecond
	var last time.Time

	for {
		select {
		case ev, ok := <-d.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != d.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if now := time.Now(); now.Sub(last) < debounce {
				continue
			} else {
				last = now
			}
			if err := d.reload(); err != nil {
				log.Printf("[page] reload %s: %v", filepath.Base(d.path), err)
				continue
			}
			select {
			case d.mutations <- struct{}{}:
			default:
			}
		case _, ok := <-d.fw.Errors:
			if !ok {
				return
			}
		case <-d.done:
			return
		}
	}
}

func (d *FileDocument) reload() error {
	f, err := os.Open(d.path)
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.doc = doc
	d.url = documentURL(doc, d.path)
	d.mu.Unlock()
	return nil
}

// URL returns the captured page's address: the canonical link or og:url
// meta when the snapshot carries one, otherwise the file path itself.
func (d *FileDocument) URL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url
}

func (d *FileDocument) Root() *goquery.Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc
}

func (d *FileDocument) Mutations() <-chan struct{}     { return d.mutations }
func (d *FileDocument) Intersections() <-chan struct{} { return d.intersections }
func (d *FileDocument) Scrolls() <-chan struct{}       { return d.scrolls }

// Close stops watching. Safe to call more than once.
func (d *FileDocument) Close() error {
	d.mu.Lock()
	if d.stop {
		d.mu.Unlock()
		return nil
	}
	d.stop = true
	d.mu.Unlock()

	close(d.done)
	if d.fw != nil {
		return d.fw.Close()
	}
	return nil
}

func documentURL(doc *goquery.Document, fallbackPath string) string {
	if href, ok := doc.Find("link[rel='canonical']").First().Attr("href"); ok {
		if href = strings.TrimSpace(href); href != "" {
			return href
		}
	}
	if content, ok := doc.Find("meta[property='og:url']").First().Attr("content"); ok {
		if content = strings.TrimSpace(content); content != "" {
			return content
		}
	}
	return "file://" + fallbackPath
}
