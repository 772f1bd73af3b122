package chat

import (
	"encoding/json"
	"testing"
)

func TestClassifyRoom(t *testing.T) {
	tests := []struct {
		name     string
		kind     RoomKind
		roomName string
		explicit RoomCategory
		want     RoomCategory
	}{
		{"explicit category wins", RoomPublic, "Support Desk", CategoryGlobal, CategoryGlobal},
		{"private kind", RoomPrivate, "Announcements", "", CategoryPrivate},
		{"support keyword", RoomPublic, "Support Desk", "", CategorySupport},
		{"help keyword", RoomPublic, "Help & Questions", "", CategorySupport},
		{"off-topic keyword", RoomPublic, "Off-Topic Lounge", "", CategorySupport},
		{"keyword is case insensitive", RoomPublic, "HELP desk", "", CategorySupport},
		{"default global", RoomPublic, "Announcements", "", CategoryGlobal},
		{"unknown explicit falls through", RoomPublic, "General", "bogus", CategoryGlobal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyRoom(tc.kind, tc.roomName, tc.explicit)
			if got != tc.want {
				t.Errorf("classifyRoom(%q, %q, %q) = %q, want %q", tc.kind, tc.roomName, tc.explicit, got, tc.want)
			}
		})
	}
}

func TestGroupRoomIDRoundTrip(t *testing.T) {
	id := GroupRoomID(42)
	if id != "group_42" {
		t.Fatalf("GroupRoomID(42) = %q, want group_42", id)
	}
	got, ok := GroupIDFromRoomID(id)
	if !ok || got != 42 {
		t.Fatalf("GroupIDFromRoomID(%q) = %d, %v", id, got, ok)
	}
}

func TestGroupIDFromRoomIDRejectsNonGroupIDs(t *testing.T) {
	for _, id := range []string{"general", "group_", "group_abc", "", "42"} {
		if _, ok := GroupIDFromRoomID(id); ok {
			t.Errorf("GroupIDFromRoomID(%q) accepted a non-group id", id)
		}
	}
}

func TestRoomForGroupFallbackName(t *testing.T) {
	room := roomForGroup(Group{ID: 7, Name: "   "})
	if room.Name != "Unnamed Group" {
		t.Errorf("blank group name mapped to %q, want Unnamed Group", room.Name)
	}
	if room.ID != "group_7" || !room.IsGroup() || room.Category != CategoryGroups {
		t.Errorf("unexpected synthetic room: %+v", room)
	}
}

func TestMergeRoomsDropsDuplicates(t *testing.T) {
	generic := []Room{
		{ID: "general", Name: "General"},
		{ID: "group_3", Name: "Chat service's view"},
	}
	group := []Room{
		{ID: "group_3", Name: "Synthetic duplicate"},
		{ID: "group_9", Name: "Book Club"},
	}
	merged := mergeRooms(generic, group)
	if len(merged) != 3 {
		t.Fatalf("merged %d rooms, want 3: %+v", len(merged), merged)
	}
	if merged[1].Name != "Chat service's view" {
		t.Errorf("duplicate resolution kept %q, want the first occurrence", merged[1].Name)
	}
}

func TestFlexIDUnmarshal(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"general"`, "general"},
		{`42`, "42"},
		{`null`, ""},
	}
	for _, tc := range tests {
		var id flexID
		if err := json.Unmarshal([]byte(tc.raw), &id); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.raw, err)
		}
		if id.String() != tc.want {
			t.Errorf("flexID(%s) = %q, want %q", tc.raw, id, tc.want)
		}
	}

	var id flexID
	if err := json.Unmarshal([]byte(`{"nested":true}`), &id); err == nil {
		t.Error("expected error for object-shaped id")
	}
}
