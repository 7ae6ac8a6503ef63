package view

import (
	"github.com/wiremix/mixerd/internal/pwire"
	"github.com/wiremix/mixerd/internal/replica"
)

// SetTargetCommand builds the command that (re)targets node at the node
// named targetNodeName, using whichever metadata object holds the
// "default" scope (the same metadata object default.audio.sink/source live
// on carries target.object too).
func SetTargetCommand(s *replica.State, node pwire.ObjectId, targetNodeName string) pwire.Command {
	md := s.DefaultMetadata()
	var mdID pwire.ObjectId
	if md != nil {
		mdID = md.ID
	}
	return pwire.SetNodeTarget{MetadataID: mdID, Node: node, TargetName: targetNodeName}
}

// ClearTargetCommand builds the command that clears an explicit target,
// returning the node to automatic default-endpoint routing — scenario S5's
// second half: after a ClearTargetCommand, the stream must follow whichever
// node is default, not stay pinned to the last explicit target.
func ClearTargetCommand(s *replica.State, node pwire.ObjectId) pwire.Command {
	return SetTargetCommand(s, node, "")
}

// SetDefaultSinkCommand builds the command that changes the system default
// sink to the node named nodeName.
func SetDefaultSinkCommand(s *replica.State, nodeName string) pwire.Command {
	md := s.DefaultMetadata()
	var mdID pwire.ObjectId
	if md != nil {
		mdID = md.ID
	}
	return pwire.SetDefaultSink{MetadataID: mdID, NodeName: nodeName}
}

// SetDefaultSourceCommand is SetDefaultSinkCommand's source counterpart.
func SetDefaultSourceCommand(s *replica.State, nodeName string) pwire.Command {
	md := s.DefaultMetadata()
	var mdID pwire.ObjectId
	if md != nil {
		mdID = md.ID
	}
	return pwire.SetDefaultSource{MetadataID: mdID, NodeName: nodeName}
}
