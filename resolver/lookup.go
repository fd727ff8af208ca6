package resolver

import (
	"fmt"
	"net"
	"sort"
	"strings"

	"github.com/thenaterhood/stubdns/models"
	"github.com/thenaterhood/stubdns/records"
)

// Convenience lookups layered over Query. These are thin adapters; all
// policy (retries, caching, failover) lives below them.

// LookupHost returns the IPv4 addresses for name. When a resolv.conf
// adapter is configured, unqualified names are expanded against its
// search list and candidates are tried in order.
func (r *Resolver) LookupHost(name string) ([]net.IP, error) {
	for _, candidate := range r.searchNames(name) {
		resp := r.Query(candidate, records.TypeA)
		if resp.Error != "" {
			return nil, fmt.Errorf("lookup %s: %s", candidate, resp.Error)
		}
		if resp.Header.RCode != models.RCodeNoError {
			continue
		}

		var addrs []net.IP
		for _, rr := range resp.Answers {
			if a, ok := rr.Data.(*records.A); ok {
				addrs = append(addrs, a.Address)
			}
		}
		if len(addrs) > 0 {
			return addrs, nil
		}
	}
	return nil, fmt.Errorf("lookup %s: no address records", name)
}

// LookupAddr returns the PTR names for an IP address.
func (r *Resolver) LookupAddr(ip net.IP) ([]string, error) {
	arpa, err := ReverseName(ip)
	if err != nil {
		return nil, err
	}

	resp := r.Query(arpa, records.TypePTR)
	if resp.Error != "" {
		return nil, fmt.Errorf("lookup %s: %s", arpa, resp.Error)
	}

	var names []string
	for _, rr := range resp.Answers {
		if ptr, ok := rr.Data.(*records.PTR); ok {
			names = append(names, ptr.Ptr)
		}
	}
	return names, nil
}

// LookupMX returns the mail exchangers for name, best preference
// first.
func (r *Resolver) LookupMX(name string) ([]*records.MX, error) {
	resp := r.Query(name, records.TypeMX)
	if resp.Error != "" {
		return nil, fmt.Errorf("lookup %s: %s", name, resp.Error)
	}

	var mxs []*records.MX
	for _, rr := range resp.Answers {
		if mx, ok := rr.Data.(*records.MX); ok {
			mxs = append(mxs, mx)
		}
	}
	sort.SliceStable(mxs, func(i, j int) bool {
		return mxs[i].Preference < mxs[j].Preference
	})
	return mxs, nil
}

func (r *Resolver) searchNames(name string) []string {
	if r.resolvConf != nil {
		if names := r.resolvConf.GetFullyQualifiedNames(name); len(names) > 0 {
			return names
		}
	}
	return []string{name}
}

// ReverseName formats the in-addr.arpa (v4) or ip6.arpa (v6 nibble)
// query name for an address.
func ReverseName(ip net.IP) (string, error) {
	if v4 := ip.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.%d.in-addr.arpa.", v4[3], v4[2], v4[1], v4[0]), nil
	}
	v6 := ip.To16()
	if v6 == nil {
		return "", fmt.Errorf("invalid ip address %q", ip)
	}

	var sb strings.Builder
	for i := len(v6) - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "%x.%x.", v6[i]&0x0f, v6[i]>>4)
	}
	sb.WriteString("ip6.arpa.")
	return sb.String(), nil
}
