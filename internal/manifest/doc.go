// Package manifest records what a published dictionary consists of.
//
// Every build is written below its own version directory:
//
//	v000003/manifest.json
//	v000003/charID.chid
//	v000003/[3042].louds
//	v000003/[3042].loudschars2
//	v000003/[3042].terminal
//	v000003/[3042]0.loudstxt3
//	CURRENT            -> "v000003/manifest.json"
//
// Save writes the manifest and then replaces CURRENT, so readers either see
// the previous complete dictionary or the new one. On S3 the DynamoDB commit
// store turns the CURRENT update into a conditional write.
//
// The manifest lists every artifact with its decoded size and CRC32C so
// readers can verify what they load, and the compression used for transport.
package manifest
