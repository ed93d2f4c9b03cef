package cache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/zeebo/blake3"

	"basegraph.app/courier/internal/model"
)

const namespace = "courier"

// fingerprintKey is the BLAKE3 key for cache fingerprints, the ASCII domain name
// zero-padded to 32 bytes. Changing it orphans every cached entry.
var fingerprintKey = [32]byte{
	'c', 'o', 'u', 'r', 'i', 'e', 'r', '.', 'c', 'a', 'c', 'h', 'e', '.',
	'k', 'e', 'y', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Fingerprint hashes the canonical JSON encoding of v. encoding/json sorts map keys,
// so equal filters always produce the same fingerprint.
func Fingerprint(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(fmt.Sprintf("%#v", v))
	}
	hasher, err := blake3.NewKeyed(fingerprintKey[:])
	if err != nil {
		panic("cache: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	_, _ = hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil)[:16])
}

// Key builds courier:{entity}:{scope}:{fingerprint}.
func Key(entity, scope string, filters any) string {
	return fmt.Sprintf("%s:%s:%s:%s", namespace, entity, scope, Fingerprint(filters))
}

// Prefix builds courier:{entity}:{scope}: which matches every Key for that scope.
func Prefix(entity, scope string) string {
	return fmt.Sprintf("%s:%s:%s:", namespace, entity, scope)
}

func ThreadDetail(threadID int64) string {
	return Key("thread", strconv.FormatInt(threadID, 10), "detail")
}

func ThreadMessages(threadID int64, page model.Page) string {
	return Key("thread", strconv.FormatInt(threadID, 10), map[string]any{"messages": page.Normalize()})
}

func ThreadCase(threadID int64) string {
	return Key("thread", strconv.FormatInt(threadID, 10), "case")
}

// ThreadPrefix covers detail, case and every message page of the thread.
func ThreadPrefix(threadID int64) string {
	return Prefix("thread", strconv.FormatInt(threadID, 10))
}

func Inbox(userID int64, page model.Page) string {
	return Key("inbox", strconv.FormatInt(userID, 10), page.Normalize())
}

func InboxPrefix(userID int64) string {
	return Prefix("inbox", strconv.FormatInt(userID, 10))
}

// Overview keys aggregate computations such as retention status.
func Overview(name string, filters any) string {
	return Key("overview", name, filters)
}

func OverviewPrefix(name string) string {
	return Prefix("overview", name)
}
