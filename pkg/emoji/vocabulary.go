// Package emoji, emote ve reaction'larda kabul edilen emoji kimliklerini yönetir.
//
// Kimlik listesi emojis.yaml dosyasından gelir ve binary'ye gömülür.
// Varsayılan vocabulary process ömrü boyunca bir kez parse edilir (Default).
package emoji

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed emojis.yaml
var embeddedVocabulary []byte

// Entry, vocabulary'deki tek bir emoji.
type Entry struct {
	ID   string `yaml:"id" json:"id"`
	Char string `yaml:"char" json:"char"`
}

type vocabularyFile struct {
	Emojis []Entry `yaml:"emojis"`
}

// Vocabulary, izin verilen emoji kimliklerinin değişmez kümesidir.
// Oluşturulduktan sonra sadece okunur, goroutine'ler arası kilitsiz paylaşılabilir.
type Vocabulary struct {
	entries map[string]Entry
}

var (
	defaultOnce  sync.Once
	defaultVocab *Vocabulary
	defaultErr   error
)

// Default, gömülü emojis.yaml'dan parse edilen vocabulary'yi döner.
func Default() (*Vocabulary, error) {
	defaultOnce.Do(func() {
		defaultVocab, defaultErr = Parse(embeddedVocabulary)
	})
	return defaultVocab, defaultErr
}

// Parse, YAML içeriğinden bir Vocabulary oluşturur.
//
// Kurallar: id ":" ile başlayıp bitmeli, en az bir karakter içermeli ve tekrar etmemeli.
func Parse(data []byte) (*Vocabulary, error) {
	var file vocabularyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse emoji vocabulary: %w", err)
	}

	if len(file.Emojis) == 0 {
		return nil, fmt.Errorf("emoji vocabulary is empty")
	}

	entries := make(map[string]Entry, len(file.Emojis))
	for _, e := range file.Emojis {
		if !IsWellFormed(e.ID) {
			return nil, fmt.Errorf("invalid emoji id %q", e.ID)
		}
		if _, dup := entries[e.ID]; dup {
			return nil, fmt.Errorf("duplicate emoji id %q", e.ID)
		}
		entries[e.ID] = e
	}

	return &Vocabulary{entries: entries}, nil
}

// IsWellFormed, id'nin ":name:" formatında olup olmadığını kontrol eder.
func IsWellFormed(id string) bool {
	return len(id) > 2 &&
		strings.HasPrefix(id, ":") &&
		strings.HasSuffix(id, ":") &&
		!strings.ContainsAny(id[1:len(id)-1], ": \t\n")
}

// Contains, id'nin vocabulary'de olup olmadığını döner.
func (v *Vocabulary) Contains(id string) bool {
	_, ok := v.entries[id]
	return ok
}

// Lookup, id'ye karşılık gelen entry'yi döner.
func (v *Vocabulary) Lookup(id string) (Entry, bool) {
	e, ok := v.entries[id]
	return e, ok
}

// IDs, tüm kimlikleri alfabetik sırada döner.
func (v *Vocabulary) IDs() []string {
	ids := make([]string, 0, len(v.entries))
	for id := range v.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len, vocabulary'deki emoji sayısı.
func (v *Vocabulary) Len() int {
	return len(v.entries)
}
