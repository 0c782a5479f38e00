// Package models defines the records the sync layer moves between the
// remote backend, memory and the durable cache.
//
// Every record shares the same envelope: an id, a createdAt timestamp and a
// status. The rest of the fields are payload; the store never reads them.
package models

// Collection names one entity type. The name doubles as the cache key and
// the path segment on the remote API.
type Collection string

const (
	CollectionMessages     Collection = "messages"
	CollectionUrgentMemos  Collection = "urgent_memos"
	CollectionProposals    Collection = "proposals"
	CollectionPosts        Collection = "posts"
	CollectionArrivalPings Collection = "arrival_pings"
)

// Collections lists every collection in hydrate order.
var Collections = []Collection{
	CollectionMessages,
	CollectionUrgentMemos,
	CollectionProposals,
	CollectionPosts,
	CollectionArrivalPings,
}

var tempPrefixes = map[Collection]string{
	CollectionMessages:     "tmp_msg_",
	CollectionUrgentMemos:  "tmp_memo_",
	CollectionProposals:    "tmp_prop_",
	CollectionPosts:        "tmp_post_",
	CollectionArrivalPings: "tmp_ping_",
}

// TempPrefix is the prefix of client-generated ids for c.
func (c Collection) TempPrefix() string {
	if p, ok := tempPrefixes[c]; ok {
		return p
	}
	return "tmp_" + string(c) + "_"
}

// CacheKey is the durable cache key holding the snapshot of c.
func (c Collection) CacheKey() string {
	return "collection:" + string(c)
}

// Valid reports whether c is one of Collections.
func (c Collection) Valid() bool {
	_, ok := tempPrefixes[c]
	return ok
}

// Status is the user-visible state flag of a record.
type Status string

const (
	StatusUnread    Status = "unread"
	StatusRead      Status = "read"
	StatusPending   Status = "pending"
	StatusAck       Status = "ack"
	StatusOpened    Status = "opened"
	StatusAccepted  Status = "accepted"
	StatusDenied    Status = "denied"
	StatusPublished Status = "published"
	StatusHidden    Status = "hidden"
	StatusSeen      Status = "seen"
)

func oneOf(s Status, allowed ...Status) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}
