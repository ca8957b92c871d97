package appticket

import (
	"bytes"
	"net/netip"
	"time"
)

// Ownership flags. Other bits are reserved and ignored.
const (
	FlagVACBanned uint32 = 1 << iota
	FlagLicenseBorrowed
	FlagLicenseTemporary
)

// DLC is a downloadable content entry of the ownership section.
type DLC struct {
	AppID    uint32
	Licenses []uint32
}

// Ticket is a decoded app ticket. It is immutable and owns all of its buffers.
type Ticket struct {
	version          uint32
	ownershipVersion uint32
	steamID          uint64
	appID            uint32
	externalIP       netip.Addr
	internalIP       netip.Addr
	flags            uint32
	issueTime        time.Time
	expireTime       time.Time
	licenses         []uint32
	dlc              []DLC

	appDefinedValue    uint32
	hasAppDefinedValue bool
	extension          [2]uint64

	userData  []byte
	signed    []byte
	signature []byte
	raw       []byte
}

// Version of the ticket envelope.
func (t *Ticket) Version() uint32 { return t.version }

// OwnershipVersion is the version of the embedded ownership ticket.
func (t *Ticket) OwnershipVersion() uint32 { return t.ownershipVersion }

// AppID is the application the ticket was issued for.
func (t *Ticket) AppID() uint32 { return t.appID }

// SteamID identifies the holder of the ticket.
func (t *Ticket) SteamID() uint64 { return t.steamID }

// IssueTime is the instant the ticket was issued, in UTC.
func (t *Ticket) IssueTime() time.Time { return t.issueTime }

// ExpireTime is the instant the ownership claim expires, in UTC. It is the zero
// time when the issuer did not set one.
func (t *Ticket) ExpireTime() time.Time { return t.expireTime }

// IsExpiredAt reports whether the ownership claim has expired at the given instant.
func (t *Ticket) IsExpiredAt(now time.Time) bool {
	return !t.expireTime.IsZero() && !now.Before(t.expireTime)
}

func (t *Ticket) OwnershipFlags() uint32 { return t.flags }

func (t *Ticket) IsVACBanned() bool { return t.flags&FlagVACBanned != 0 }

func (t *Ticket) IsLicenseBorrowed() bool { return t.flags&FlagLicenseBorrowed != 0 }

func (t *Ticket) IsLicenseTemporary() bool { return t.flags&FlagLicenseTemporary != 0 }

// AppDefinedValue returns the value set by the application at issuance. Tickets
// older than version 2 do not carry one.
func (t *Ticket) AppDefinedValue() (uint32, bool) {
	return t.appDefinedValue, t.hasAppDefinedValue
}

func (t *Ticket) ExternalIP() netip.Addr { return t.externalIP }

func (t *Ticket) InternalIP() netip.Addr { return t.internalIP }

// Licenses returns the package ids granting the app.
func (t *Ticket) Licenses() []uint32 {
	return append([]uint32(nil), t.licenses...)
}

// DLC returns the downloadable content owned alongside the app.
func (t *Ticket) DLC() []DLC {
	dlc := make([]DLC, len(t.dlc))
	for i, d := range t.dlc {
		dlc[i] = DLC{AppID: d.AppID, Licenses: append([]uint32(nil), d.Licenses...)}
	}
	return dlc
}

// UserData returns the application-defined payload embedded by the issuer.
func (t *Ticket) UserData() []byte { return bytes.Clone(t.userData) }

// Signature returns the RSA signature of the ownership section, or nil.
func (t *Ticket) Signature() []byte { return bytes.Clone(t.signature) }

// HasSignature reports whether the ownership section carries a signature. It says
// nothing about its validity: see IsTicketSigned.
func (t *Ticket) HasSignature() bool { return len(t.signature) > 0 }

// RawPlaintext returns the whole decrypted ticket, unknown trailing bytes included.
func (t *Ticket) RawPlaintext() []byte { return bytes.Clone(t.raw) }

// Info is a flat, exported view of a Ticket, suitable for encoding.
type Info struct {
	Version          uint32
	AppID            uint32
	SteamID          uint64
	IssueTime        time.Time
	ExpireTime       time.Time
	VACBanned        bool
	LicenseBorrowed  bool
	LicenseTemporary bool
	OwnershipFlags   Hex32
	AppDefinedValue  *uint32
	ExternalIP       string
	InternalIP       string
	Licenses         []uint32
	DLC              []DLC
	UserData         Hex
	HasSignature     bool
}

// Info returns a snapshot of the ticket fields.
func (t *Ticket) Info() *Info {
	info := &Info{
		Version:          t.version,
		AppID:            t.appID,
		SteamID:          t.steamID,
		IssueTime:        t.issueTime,
		ExpireTime:       t.expireTime,
		VACBanned:        t.IsVACBanned(),
		LicenseBorrowed:  t.IsLicenseBorrowed(),
		LicenseTemporary: t.IsLicenseTemporary(),
		OwnershipFlags:   Hex32(t.flags),
		ExternalIP:       t.externalIP.String(),
		InternalIP:       t.internalIP.String(),
		Licenses:         t.Licenses(),
		DLC:              t.DLC(),
		UserData:         t.UserData(),
		HasSignature:     t.HasSignature(),
	}
	if value, ok := t.AppDefinedValue(); ok {
		info.AppDefinedValue = &value
	}
	return info
}
