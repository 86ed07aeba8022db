package notify

import "testing"

func TestBusDeliversToSlotSubscribers(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.OnChange("local_toilets", func(slot string) { got = append(got, slot) })
	bus.OnChange("local_users", func(slot string) { t.Fatal("wrong slot delivered") })

	bus.Notify("local_toilets")
	bus.Notify("local_toilets")

	if len(got) != 2 || got[0] != "local_toilets" {
		t.Fatalf("unexpected deliveries: %v", got)
	}
}

func TestBusAnyChange(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.OnAnyChange(func(slot string) { got = append(got, slot) })

	bus.Notify("local_toilets")
	bus.Notify("provider_assignments")

	if len(got) != 2 || got[1] != "provider_assignments" {
		t.Fatalf("unexpected deliveries: %v", got)
	}
}

func TestBusSlotAndAnySubscribersBothFire(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.OnChange("local_toilets", func(slot string) { got = append(got, "slot:"+slot) })
	bus.OnAnyChange(func(slot string) { got = append(got, "any:"+slot) })

	bus.Notify("local_toilets")

	if len(got) != 2 || got[0] != "slot:local_toilets" || got[1] != "any:local_toilets" {
		t.Fatalf("unexpected deliveries: %v", got)
	}
}

func TestBusNoSubscribers(t *testing.T) {
	bus := NewBus()
	bus.Notify("local_toilets") // must not panic
}
