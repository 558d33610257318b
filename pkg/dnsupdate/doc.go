// Package dnsupdate provides the RFC 2136 Dynamic DNS Update primitives the
// rfc2136 registrar driver uses to swap a zone's apex NS RRset: query the
// current delegation, delete it, and insert the new one's records.
//
// This package targets any RFC 2136-compliant authoritative server,
// including BIND, Knot DNS, and PowerDNS.
//
// Key features:
//   - TSIG authentication (RFC 2845) with HMAC-MD5, HMAC-SHA256, HMAC-SHA512
//   - Both UDP and TCP transport
//   - Configurable timeouts
//
// # Usage
//
// Create a client with configuration from environment variables:
//
//	config, err := dnsupdate.LoadConfig("FAILOVERCTL_RFC2136_")
//	if err != nil {
//	    return err
//	}
//
//	client, err := dnsupdate.NewClient(config)
//	if err != nil {
//	    return err
//	}
//
//	// Insert one NS record of the new delegation set
//	err = client.Create(ctx, dnsupdate.NewNSRecord("example.com.", "ns1.failover.example.com.", 300))
//
// # Environment Variables
//
// The following environment variables are supported (with prefix):
//
//	{PREFIX}SERVER          - DNS server address (e.g., "ns1.example.com:53")
//	{PREFIX}ZONE            - Zone name (e.g., "example.com.")
//	{PREFIX}TSIG_KEY_NAME   - TSIG key name (e.g., "failoverctl.")
//	{PREFIX}TSIG_SECRET     - TSIG secret (base64-encoded)
//	{PREFIX}TSIG_SECRET_FILE - Path to file containing TSIG secret (Docker/Kubernetes secrets)
//	{PREFIX}TSIG_ALGORITHM  - TSIG algorithm (hmac-sha256, hmac-sha512, hmac-md5)
//	{PREFIX}TIMEOUT         - Connection timeout in seconds (default: 10)
//	{PREFIX}USE_TCP         - Force TCP transport (default: false, uses UDP)
//
// # TSIG Authentication
//
// TSIG (Transaction Signature) is the standard authentication method for RFC 2136.
// Generate TSIG keys using BIND's dnssec-keygen or tsig-keygen:
//
//	tsig-keygen -a hmac-sha256 failoverctl > failoverctl.key
//
// Configure the key on the authoritative server and provide the name and
// secret to the rfc2136 registrar driver.
package dnsupdate
