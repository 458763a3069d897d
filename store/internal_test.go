package store

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func TestAllKeys(t *testing.T) {
	user := UserRecord{UserID: "u1"}
	got := allKeys(user)
	if len(got) != 1 {
		t.Fatalf("expected 1 key for a non-projecting record, got %d", len(got))
	}

	conn := ConnectionRecord{ConnectionID: "c1", UserID: "u1"}
	got = allKeys(conn)
	if len(got) != 2 {
		t.Fatalf("expected 2 keys for a projecting record, got %d", len(got))
	}
	if got[0] != conn.PrimaryKey() {
		t.Error("primary key must come first")
	}
}

func TestCloneItemIsIndependent(t *testing.T) {
	item := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "USER#u1"},
	}
	dup := cloneItem(item)
	dup["SK"] = &types.AttributeValueMemberS{Value: "INFO"}

	if _, ok := item["SK"]; ok {
		t.Error("mutating the clone must not affect the original")
	}
}

func TestStringAttr(t *testing.T) {
	item := map[string]types.AttributeValue{
		"_Type": &types.AttributeValueMemberS{Value: "user"},
		"count": &types.AttributeValueMemberN{Value: "3"},
	}

	if got := stringAttr(item, "_Type"); got != "user" {
		t.Errorf("expected 'user', got %q", got)
	}
	if got := stringAttr(item, "missing"); got != "" {
		t.Errorf("expected empty string for absent attribute, got %q", got)
	}
	if got := stringAttr(item, "count"); got != "" {
		t.Errorf("expected empty string for non-string attribute, got %q", got)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	tbl := New(nil, DefaultConfig())

	item := map[string]types.AttributeValue{
		"PK":    &types.AttributeValueMemberS{Value: "X#1"},
		"SK":    &types.AttributeValueMemberS{Value: "INFO"},
		"_Type": &types.AttributeValueMemberS{Value: "widget"},
	}
	if _, err := tbl.decode(item); err == nil {
		t.Fatal("expected error for unknown type tag")
	}
}

func TestDecodeDispatch(t *testing.T) {
	tbl := New(nil, DefaultConfig())

	item := map[string]types.AttributeValue{
		"PK":        &types.AttributeValueMemberS{Value: "USER#u1"},
		"SK":        &types.AttributeValueMemberS{Value: "INFO"},
		"_Type":     &types.AttributeValueMemberS{Value: TypeUser},
		"user_id":   &types.AttributeValueMemberS{Value: "u1"},
		"user_name": &types.AttributeValueMemberS{Value: "Alice"},
	}
	rec, err := tbl.decode(item)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	user, ok := rec.(*UserRecord)
	if !ok {
		t.Fatalf("expected *UserRecord, got %T", rec)
	}
	if user.UserName != "Alice" {
		t.Errorf("expected UserName 'Alice', got %q", user.UserName)
	}
}
