// Package domain contains the value types shared by the launcher core: saved
// game configuration, the result shapes returned by the host for verify,
// repair and installer operations, and the progress records streamed while a
// task runs. It has no dependencies on infrastructure packages.
package domain
