// Package natutil maps a bank node's listen ports through whatever NAT
// gateway sits in front of it, so that dial-out peers outside the local
// network can still reach a listen endpoint. Mapping is best-effort: a
// node with no NAT gateway, or one that refuses mapping requests, keeps
// running with only local reachability.
package natutil

import (
	"fmt"
	"time"

	"github.com/NebulousLabs/go-upnp"
	natpmp "github.com/jackpal/go-nat-pmp"
	"github.com/jackpal/gateway"
)

// leaseDuration is how long an external mapping is requested for before
// it must be renewed.
const leaseDuration = 20 * time.Minute

// Mapper maps local listen ports to externally-reachable ports.
type Mapper interface {
	// AddMapping requests an external mapping for localPort, returning
	// the externally visible port (which may differ from localPort).
	AddMapping(localPort uint16, description string) (externalPort uint16, err error)

	// ExternalIP returns the gateway's external address, if known.
	ExternalIP() (string, error)
}

// Discover tries UPnP first, then falls back to NAT-PMP via the default
// gateway; it returns nil (no error) if neither is available, signalling
// "NAT mapping is not possible here, proceed with local reachability
// only" rather than treating absence of a gateway as fatal.
func Discover() Mapper {
	if d, err := upnp.Discover(); err == nil {
		log.Infof("discovered UPnP gateway")
		return &upnpMapper{d}
	}

	if gw, err := gateway.DiscoverGateway(); err == nil {
		log.Infof("discovered NAT-PMP gateway at %s", gw)
		return &pmpMapper{client: natpmp.NewClient(gw)}
	}

	log.Infof("no NAT gateway found, listen ports stay locally reachable only")
	return nil
}

type upnpMapper struct {
	dev *upnp.IGD
}

func (m *upnpMapper) AddMapping(localPort uint16, description string) (uint16, error) {
	if err := m.dev.Forward(localPort, description); err != nil {
		return 0, fmt.Errorf("natutil: upnp forward port %d: %w", localPort, err)
	}
	return localPort, nil
}

func (m *upnpMapper) ExternalIP() (string, error) {
	ip, err := m.dev.ExternalIP()
	if err != nil {
		return "", fmt.Errorf("natutil: upnp external ip: %w", err)
	}
	return ip, nil
}

type pmpMapper struct {
	client *natpmp.Client
}

func (m *pmpMapper) AddMapping(localPort uint16, _ string) (uint16, error) {
	res, err := m.client.AddPortMapping("tcp", int(localPort), int(localPort), int(leaseDuration.Seconds()))
	if err != nil {
		return 0, fmt.Errorf("natutil: nat-pmp map port %d: %w", localPort, err)
	}
	return res.MappedExternalPort, nil
}

func (m *pmpMapper) ExternalIP() (string, error) {
	res, err := m.client.GetExternalAddress()
	if err != nil {
		return "", fmt.Errorf("natutil: nat-pmp external ip: %w", err)
	}
	ip := res.ExternalIPAddress
	return fmt.Sprintf("%d.%d.%d.%d", ip[0], ip[1], ip[2], ip[3]), nil
}
