package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/ast"
)

func TestHash_Deterministic(t *testing.T) {
	assert.Equal(t, Hash("hello"), Hash("hello"))
	assert.NotEqual(t, Hash("hello"), Hash("world"))
}

func TestGet_MissOnEmptyCache(t *testing.T) {
	c := New()
	_, ok := c.Get(Key{URI: "file:///A.groovy", Hash: Hash("x")})
	assert.False(t, ok)
}

func TestPutGet_RoundTrip(t *testing.T) {
	c := New()
	mod := &ast.Module{URI: "file:///A.groovy"}
	key := Key{URI: "file:///A.groovy", Hash: Hash("content")}
	c.Put(key, Entry{Module: mod})

	entry, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, mod, entry.Module)
}

func TestGet_DifferentHashIsMiss(t *testing.T) {
	c := New()
	key := Key{URI: "file:///A.groovy", Hash: Hash("content")}
	c.Put(key, Entry{Module: &ast.Module{URI: "file:///A.groovy"}})

	_, ok := c.Get(Key{URI: "file:///A.groovy", Hash: Hash("other content")})
	assert.False(t, ok)
}

func TestPut_EvictsPriorRevisionOfSameURI(t *testing.T) {
	c := New()
	uri := "file:///A.groovy"
	oldKey := Key{URI: uri, Hash: Hash("v1")}
	newKey := Key{URI: uri, Hash: Hash("v2")}

	c.Put(oldKey, Entry{Module: &ast.Module{URI: uri}})
	c.Put(newKey, Entry{Module: &ast.Module{URI: uri}})

	_, ok := c.Get(oldKey)
	assert.False(t, ok, "old revision should have been evicted")

	_, ok = c.Get(newKey)
	assert.True(t, ok)
}

func TestInvalidate_RemovesEveryEntryForURI(t *testing.T) {
	c := New()
	key := Key{URI: "file:///A.groovy", Hash: Hash("v1")}
	c.Put(key, Entry{Module: &ast.Module{URI: "file:///A.groovy"}})

	c.Invalidate("file:///A.groovy")

	_, ok := c.Get(key)
	assert.False(t, ok)
}

func TestInvalidate_LeavesOtherURIsUntouched(t *testing.T) {
	c := New()
	keyA := Key{URI: "file:///A.groovy", Hash: Hash("a")}
	keyB := Key{URI: "file:///B.groovy", Hash: Hash("b")}
	c.Put(keyA, Entry{})
	c.Put(keyB, Entry{})

	c.Invalidate("file:///A.groovy")

	_, ok := c.Get(keyB)
	assert.True(t, ok)
}
