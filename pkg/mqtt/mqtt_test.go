package mqtt

import (
	"encoding/json"
	"testing"
)

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage("rcswitch/code", map[string]string{"code": "0FF0"}, true)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Topic != "rcswitch/code" || !msg.Retained || msg.Qos != 0 {
		t.Errorf("message = %+v", msg)
	}

	var v map[string]string
	if err := json.Unmarshal(msg.Payload, &v); err != nil || v["code"] != "0FF0" {
		t.Errorf("payload = %s (%v)", msg.Payload, err)
	}

	if _, err := NewMessage("t", make(chan int), false); err == nil {
		t.Error("NewMessage() of a channel must fail")
	}
}

func TestServiceWithoutBroker(t *testing.T) {
	m := New()
	if err := m.Connect("", "test"); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		m.Service()
		close(done)
	}()

	m.C <- Message{Topic: "rcswitch/code", Payload: []byte("{}")}
	if err := m.Disconnect(); err != nil {
		t.Fatal(err)
	}
	<-done
}
