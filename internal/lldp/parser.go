// Package lldp decodes the neighbor table reported by lldpctl into
// NeighborRecords.
package lldp

import (
	"encoding/json"
	"log/slog"
	"net/netip"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"lldpinventory/internal/domain"
)

// Parser decodes raw neighbor tables
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser; a nil logger uses slog.Default()
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger.With("component", "lldp")}
}

// Parse decodes raw lldpctl JSON output. Only the first lldp section is
// read; a section without an interface list is malformed unless it is
// empty, which is how lldpctl reports no neighbors.
//
// Interface entries without a port id or chassis management address are
// omitted, as are entries whose port id is not a MAC address. Output order
// equals input order.
func (p *Parser) Parse(raw []byte) ([]domain.NeighborRecord, error) {
	text, err := decodeText(raw)
	if err != nil {
		return nil, err
	}

	var doc payload
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, &MalformedPayloadError{Reason: "invalid JSON", Err: err}
	}
	if len(doc.LLDP) == 0 {
		return nil, &MalformedPayloadError{Reason: "missing lldp envelope"}
	}

	section := doc.LLDP[0]
	if !section.hasInterface && !section.empty {
		return nil, &MalformedPayloadError{Reason: "missing interface list"}
	}
	if len(doc.LLDP) > 1 {
		p.logger.Debug("ignoring extra lldp sections", "sections", len(doc.LLDP))
	}

	records := make([]domain.NeighborRecord, 0, len(section.Interface))
	for i, iface := range section.Interface {
		record, ok := p.toRecord(i, iface)
		if !ok {
			continue
		}
		records = append(records, record)
	}

	p.logger.Debug("parsed neighbor table", "records", len(records))
	return records, nil
}

func (p *Parser) toRecord(index int, iface interfaceEntry) (domain.NeighborRecord, bool) {
	var portID string
	if len(iface.Port) > 0 {
		portID = first(iface.Port[0].ID)
	}

	var mgmtIP, chassisName string
	if len(iface.Chassis) > 0 {
		mgmtIP = managementIP(iface.Chassis[0].MgmtIP)
		chassisName = first(iface.Chassis[0].Name)
	}

	if portID == "" || mgmtIP == "" {
		p.logger.Debug("skipping interface without port id or management ip",
			"index", index, "interface", iface.Name)
		return domain.NeighborRecord{}, false
	}

	mac, err := domain.ParseMAC(portID)
	if err != nil {
		p.logger.Debug("skipping interface with non-MAC port id",
			"index", index, "interface", iface.Name, "port_id", portID)
		return domain.NeighborRecord{}, false
	}

	return domain.NeighborRecord{
		InterfaceName:       iface.Name,
		ChassisName:         chassisName,
		ChassisManagementIP: mgmtIP,
		PortMAC:             mac.String(),
	}, true
}

// managementIP prefers the first IPv4 address; lldpd lists IPv6 addresses
// alongside when the chassis advertises both.
func managementIP(values []textValue) string {
	for _, v := range values {
		addr, err := netip.ParseAddr(strings.TrimSpace(v.Value))
		if err == nil && addr.Is4() {
			return addr.String()
		}
	}
	return strings.TrimSpace(first(values))
}

func decodeText(raw []byte) (string, error) {
	out, _, err := transform.Bytes(encoding.UTF8Validator, raw)
	if err != nil {
		return "", &EncodingError{Err: err}
	}
	return string(out), nil
}
