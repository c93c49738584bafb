// Package legacy dispatches drivers stored as files in firmware volumes.
//
// # How It Works
//
// Volumes are parsed once when they are added. DRIVER and
// FIRMWARE_VOLUME_IMAGE files become pending units; the MM and combined
// PEIM file types are rejected outright and recorded as such. Every other
// file type is ignored.
//
// Each round walks the pending files in volume order and evaluates their
// dependency expressions against the protocols installed so far:
//   - a satisfied DRIVER is authenticated, loaded and started
//   - a satisfied FIRMWARE_VOLUME_IMAGE adds the nested volume
//   - BEFORE and AFTER drivers run right around the file they name
//   - SOR drivers wait for Schedule
//   - a driver the security policy refuses waits for Trust
//
// A file that fails to extract, load or start is abandoned. Rounds repeat
// until one dispatches nothing.
package legacy
