// ABOUTME: Tests for follower discovery
// ABOUTME: Covers manager lifecycle and discovered-surface addressing
package discovery

import (
	"testing"
	"time"
)

func TestFollowerInfoAddr(t *testing.T) {
	info := &FollowerInfo{Name: "page", Host: "192.168.1.20", Port: 8931}
	if got := info.Addr(); got != "192.168.1.20:8931" {
		t.Errorf("expected 192.168.1.20:8931, got %s", got)
	}
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(Config{InstanceName: "test-editor", Port: 8931})

	if m.Followers() == nil {
		t.Fatal("expected followers channel")
	}

	// Stop must terminate promptly and leave the channel drainable
	m.Stop()

	select {
	case <-m.ctx.Done():
	case <-time.After(time.Second):
		t.Error("context not cancelled by Stop")
	}
}

func TestGetLocalIPs(t *testing.T) {
	// Environment-dependent, but must never error or return nil slice
	// semantics that would break advertisement.
	ips, err := getLocalIPs()
	if err != nil {
		t.Fatalf("getLocalIPs: %v", err)
	}
	for _, ip := range ips {
		if ip.To4() == nil {
			t.Errorf("expected IPv4 address, got %v", ip)
		}
	}
}
