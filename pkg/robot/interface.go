// Package robot provides interfaces and implementations for Reachy Mini
// actuation.
//
// The package follows the Interface Segregation Principle: small, focused
// interfaces that can be composed as needed. Consumers should depend only
// on the interfaces they actually use.
package robot

// CommandSender applies a full mirroring command to the robot.
type CommandSender interface {
	SetCommand(cmd Command) error
}

// Safer moves the robot to its neutral, safe position. Used on shutdown
// and after sustained actuation failure.
type Safer interface {
	SetSafe() error
}

// Actuator is the composite interface the mirroring consumer drives.
type Actuator interface {
	CommandSender
	Safer
}

// Ensure HTTPController implements Actuator
var _ Actuator = (*HTTPController)(nil)
