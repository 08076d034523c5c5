package kv

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/dep2p/go-keyvault/internal/core/storage/engine"
	"github.com/dep2p/go-keyvault/internal/core/storage/engine/badger"
)

// testEngine 创建测试用引擎
// 使用 t.TempDir() 创建临时目录，确保测试与生产一致
func testEngine(t *testing.T) engine.Engine {
	t.Helper()

	cfg := engine.DefaultConfig(filepath.Join(t.TempDir(), "test.db"))
	cfg.SyncWrites = false
	eng, err := badger.New(cfg)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	t.Cleanup(func() {
		if err := eng.Close(); err != nil {
			t.Errorf("failed to close engine: %v", err)
		}
	})
	return eng
}

// testStore 创建测试用 Store
func testStore(t *testing.T, prefix string) *Store {
	t.Helper()
	return New(testEngine(t), []byte(prefix))
}

// ============= 基础操作测试 =============

func TestStore_PutGet(t *testing.T) {
	s := testStore(t, "s/default/")

	key, value := []byte("svc/db-password"), []byte("blob")
	if err := s.Put(key, value); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, value) {
		t.Errorf("Get returned %q, want %q", got, value)
	}

	if _, err := s.Get([]byte("missing")); !engine.IsNotFound(err) {
		t.Errorf("Get(missing) = %v, want ErrNotFound", err)
	}
}

func TestStore_Delete(t *testing.T) {
	s := testStore(t, "test/")

	key := []byte("delete-key")
	if err := s.Put(key, []byte("v")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Update(func(txn engine.Txn) error {
		return txn.Delete(key)
	}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(key); !engine.IsNotFound(err) {
		t.Errorf("Get after Delete returned %v, want ErrNotFound", err)
	}
}

func TestStore_EmptyKey(t *testing.T) {
	s := testStore(t, "test/")

	if err := s.Put(nil, []byte("v")); !errors.Is(err, engine.ErrEmptyKey) {
		t.Errorf("Put(nil) = %v", err)
	}
	if _, err := s.Get([]byte{}); !errors.Is(err, engine.ErrEmptyKey) {
		t.Errorf("Get(empty) = %v", err)
	}
}

// ============= 前缀隔离测试 =============

func TestStore_PrefixIsolation(t *testing.T) {
	eng := testEngine(t)
	a := New(eng, []byte("s/a/"))
	b := New(eng, []byte("s/b/"))

	if err := a.Put([]byte("k"), []byte("from-a")); err != nil {
		t.Fatal(err)
	}
	if err := b.Put([]byte("k"), []byte("from-b")); err != nil {
		t.Fatal(err)
	}

	got, _ := a.Get([]byte("k"))
	if string(got) != "from-a" {
		t.Errorf("a.Get = %q", got)
	}

	if keys, _, _ := a.Keys(nil, 0); len(keys) != 1 {
		t.Errorf("a.Keys = %q, want one key", keys)
	}

	// 底层键带前缀
	raw, err := eng.Get([]byte("s/b/k"))
	if err != nil || string(raw) != "from-b" {
		t.Errorf("engine.Get(s/b/k) = %q, %v", raw, err)
	}
}

// 一个前缀是另一个前缀的前缀时，较短前缀的 Keys 会看到另一方的键，
// 所以上层必须保证前缀互不包含
func TestStore_NestedPrefixOverlap(t *testing.T) {
	eng := testEngine(t)
	outer := New(eng, []byte("s/team/"))
	inner := New(eng, []byte("s/team/prod/"))

	if err := inner.Put([]byte("k"), nil); err != nil {
		t.Fatal(err)
	}
	keys, _, err := outer.Keys(nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 || string(keys[0]) != "prod/k" {
		t.Errorf("outer.Keys = %q", keys)
	}
}

// ============= 分页测试 =============

func TestStore_KeysPaging(t *testing.T) {
	s := testStore(t, "s/default/")
	for i := 0; i < 25; i++ {
		if err := s.Put([]byte(fmt.Sprintf("key/%02d", i)), []byte{byte(i)}); err != nil {
			t.Fatal(err)
		}
	}

	var all []string
	var after []byte
	pages := 0
	for {
		keys, more, err := s.Keys(after, 10)
		if err != nil {
			t.Fatalf("Keys failed: %v", err)
		}
		pages++
		for _, k := range keys {
			all = append(all, string(k))
		}
		if !more {
			break
		}
		after = keys[len(keys)-1]
	}

	if pages != 3 {
		t.Errorf("pages = %d, want 3", pages)
	}
	if len(all) != 25 || all[0] != "key/00" || all[24] != "key/24" {
		t.Errorf("keys = %v", all)
	}
}

func TestStore_KeysAfterMissing(t *testing.T) {
	s := testStore(t, "p/")
	for _, k := range []string{"a", "c", "e"} {
		if err := s.Put([]byte(k), nil); err != nil {
			t.Fatal(err)
		}
	}

	// after 不存在时从下一个键开始
	keys, more, err := s.Keys([]byte("b"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if more || len(keys) != 2 || string(keys[0]) != "c" {
		t.Errorf("Keys(b) = %q, more=%v", keys, more)
	}

	keys, _, _ = s.Keys([]byte("e"), 0)
	if len(keys) != 0 {
		t.Errorf("Keys(e) = %q, want empty", keys)
	}
}

// ============= 事务 =============

func TestStore_Update(t *testing.T) {
	s := testStore(t, "m/")

	err := s.Update(func(txn engine.Txn) error {
		if _, err := txn.Get([]byte("meta")); !engine.IsNotFound(err) {
			return fmt.Errorf("unexpected: %v", err)
		}
		return txn.Set([]byte("meta"), []byte("v1"))
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := s.Get([]byte("meta"))
	if string(got) != "v1" {
		t.Errorf("Get(meta) = %q", got)
	}
}
