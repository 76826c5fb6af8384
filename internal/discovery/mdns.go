// ABOUTME: mDNS discovery of remote follower surfaces
// ABOUTME: Advertises the editor and browses for _cuepoint-follower._tcp services
package discovery

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/hashicorp/mdns"
)

// followerService is the service type remote surfaces advertise.
const followerService = "_cuepoint-follower._tcp"

// editorService is the service type this editor advertises.
const editorService = "_cuepoint-editor._tcp"

// Config holds discovery configuration.
type Config struct {
	InstanceName string
	Port         int
}

// Manager handles mDNS operations.
type Manager struct {
	config    Config
	ctx       context.Context
	cancel    context.CancelFunc
	followers chan *FollowerInfo
}

// FollowerInfo describes a discovered follower surface.
type FollowerInfo struct {
	Name string
	Host string
	Port int
}

// Addr returns the dialable host:port.
func (f *FollowerInfo) Addr() string {
	return fmt.Sprintf("%s:%d", f.Host, f.Port)
}

// NewManager creates a discovery manager.
func NewManager(config Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		config:    config,
		ctx:       ctx,
		cancel:    cancel,
		followers: make(chan *FollowerInfo, 10),
	}
}

// Advertise announces this editor via mDNS so surfaces can find it.
func (m *Manager) Advertise() error {
	ips, err := getLocalIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		m.config.InstanceName,
		editorService,
		"",
		"",
		m.config.Port,
		ips,
		[]string{"path=/follower"},
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}

	log.Printf("Advertising mDNS service: %s on port %d (type: %s)",
		m.config.InstanceName, m.config.Port, editorService)

	go func() {
		<-m.ctx.Done()
		server.Shutdown()
	}()

	return nil
}

// Browse searches for follower surfaces.
func (m *Manager) Browse() error {
	go m.browseLoop()
	return nil
}

// browseLoop continuously browses for follower surfaces.
func (m *Manager) browseLoop() {
	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		entries := make(chan *mdns.ServiceEntry, 10)

		go func() {
			for entry := range entries {
				if entry.AddrV4 == nil {
					continue
				}
				info := &FollowerInfo{
					Name: entry.Name,
					Host: entry.AddrV4.String(),
					Port: entry.Port,
				}

				log.Printf("Discovered follower surface: %s at %s", info.Name, info.Addr())

				select {
				case m.followers <- info:
				case <-m.ctx.Done():
					return
				}
			}
		}()

		params := &mdns.QueryParam{
			Service: followerService,
			Domain:  "local",
			Timeout: 3 * time.Second,
			Entries: entries,
		}

		mdns.Query(params)
		close(entries)
	}
}

// Followers returns the channel of discovered surfaces.
func (m *Manager) Followers() <-chan *FollowerInfo {
	return m.followers
}

// Stop stops the discovery manager.
func (m *Manager) Stop() {
	m.cancel()
}

// getLocalIPs returns local IP addresses.
func getLocalIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					ips = append(ips, ipnet.IP)
				}
			}
		}
	}

	return ips, nil
}
