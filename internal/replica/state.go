package replica

import "github.com/wiremix/mixerd/internal/pwire"

// Update folds one StateEvent into the replica, and invokes the supplied
// CapturePolicy hooks at the points where capture eligibility can change —
// exactly the call sites `capture_manager.rs`'s CaptureManager expects its
// owner to drive it from.
func (s *State) Update(ev pwire.StateEvent, policy *CapturePolicy) {
	switch e := ev.(type) {
	case pwire.DeviceAdded:
		s.Devices[e.ID] = &Device{
			ID:         e.ID,
			Props:      e.Props,
			EnumRoutes: make(map[int32]EnumRoute),
			Routes:     make(map[int32]Route),
			Profiles:   make(map[int32]Profile),
		}

	case pwire.DeviceRemoved:
		delete(s.Devices, e.ID)

	case pwire.DeviceParamsChanged:
		dev, ok := s.Devices[e.ID]
		if !ok {
			return
		}
		for _, er := range e.Routes {
			dev.EnumRoutes[er.Index] = EnumRoute{
				Index:       er.Index,
				Description: er.Description,
				Available:   er.Available(),
				Profiles:    er.Profiles,
			}
		}
		for _, r := range e.Active {
			dev.Routes[r.Device] = Route{
				Index:   r.Index,
				Device:  r.Device,
				Mute:    r.Mute,
				Volumes: r.Volumes,
			}
			s.propagateRouteToNodes(dev.ID, r)
		}
		for _, p := range e.Profiles {
			dev.Profiles[p.Index] = Profile{
				Index:       p.Index,
				Name:        p.Name,
				Description: p.Description,
				Available:   p.Available,
			}
		}
		dev.ActiveProfile = e.ActiveProfile

	case pwire.NodeAdded:
		class := pwire.MediaClassOther
		if mc, ok := e.Props.MediaClass(); ok {
			class = pwire.ParseMediaClass(mc)
		}
		node := &Node{ID: e.ID, Props: e.Props, Class: class}
		if devID, routeIdx, routeDev, ok := deviceInfoFromProps(e.Props); ok {
			node.DeviceInfo = &DeviceInfo{Device: devID, RouteIndex: routeIdx, RouteDevice: routeDev}
		}
		s.Nodes[e.ID] = node
		if policy != nil {
			policy.OnNode(node)
		}

	case pwire.NodeRemoved:
		node, ok := s.Nodes[e.ID]
		delete(s.Nodes, e.ID)
		if ok && policy != nil {
			policy.OnRemoved(node)
		}

	case pwire.NodeParamsChanged:
		node, ok := s.Nodes[e.ID]
		if !ok {
			return
		}
		if e.Mute != nil {
			node.Mute = *e.Mute
		}
		if e.Volumes != nil {
			node.Volumes = e.Volumes
			node.VolumesSet = true
		}
		if e.Positions != nil {
			node.Positions = e.Positions
			if policy != nil && policy.Capturing(node.ID) {
				policy.OnPositionsChanged(node)
			}
		}

	case pwire.NodeStreamStarted:
		node, ok := s.Nodes[e.ID]
		if !ok {
			return
		}
		node.Rate = e.Rate
		node.Peaks = make([]float32, e.Channels)

	case pwire.NodeStreamStopped:
		node, ok := s.Nodes[e.ID]
		if !ok {
			return
		}
		node.Rate = 0
		node.Peaks = nil

	case pwire.NodePeaksDirty:
		node, ok := s.Nodes[e.ID]
		if !ok || node.Rate == 0 {
			return
		}
		if len(node.Peaks) != len(e.Peaks) {
			node.Peaks = make([]float32, len(e.Peaks))
		}
		for ch, observed := range e.Peaks {
			if s.PeakProcessor != nil {
				node.Peaks[ch] = s.PeakProcessor(node.Peaks[ch], observed, e.Samples, node.Rate)
			} else {
				node.Peaks[ch] = observed
			}
		}

	case pwire.ClientAdded:
		s.Clients[e.ID] = &Client{ID: e.ID, Props: e.Props}

	case pwire.ClientRemoved:
		delete(s.Clients, e.ID)

	case pwire.LinkAdded:
		s.Links[e.ID] = &Link{ID: e.ID, OutputNode: e.OutputNode, InputNode: e.InputNode}
		if node, ok := s.Nodes[e.InputNode]; ok && policy != nil {
			policy.OnLink(node)
		}

	case pwire.LinkRemoved:
		link, ok := s.Links[e.ID]
		delete(s.Links, e.ID)
		if ok && policy != nil {
			if node, ok := s.Nodes[link.InputNode]; ok && len(s.LinksInto(link.InputNode)) == 0 {
				policy.OnRemoved(node)
			}
		}

	case pwire.MetadataAdded:
		name, _ := e.Props.MetadataName()
		s.Metadata[e.ID] = &Metadata{ID: e.ID, Name: name, Props: make(map[uint32]map[string]MetadataValue)}

	case pwire.MetadataRemoved:
		delete(s.Metadata, e.ID)

	case pwire.MetadataPropertyChanged:
		md, ok := s.Metadata[e.MetadataID]
		if !ok {
			return
		}
		if md.Props[e.Subject] == nil {
			md.Props[e.Subject] = make(map[string]MetadataValue)
		}
		if e.Value == "" {
			delete(md.Props[e.Subject], e.Key)
		} else {
			md.Props[e.Subject][e.Key] = MetadataValue{Type: e.Type, Value: e.Value}
		}
	}
}

// propagateRouteToNodes updates the cached Volumes/Mute of every node whose
// DeviceInfo points at (device, r.Device), since hardware node volume is
// actually stored on the device's active route, not on the node itself.
func (s *State) propagateRouteToNodes(device pwire.ObjectId, r RouteParamLike) {
	for _, node := range s.Nodes {
		if node.DeviceInfo == nil || node.DeviceInfo.Device != device {
			continue
		}
		if node.DeviceInfo.RouteDevice != r.RouteDevice() {
			continue
		}
		node.Volumes = r.RouteVolumes()
		node.VolumesSet = true
		node.Mute = r.RouteMute()
	}
}

// RouteParamLike is implemented by pwire.RouteParam; declared here instead
// of importing the concrete struct fields directly so propagateRouteToNodes
// reads as intent, not field-punning.
type RouteParamLike interface {
	RouteDevice() int32
	RouteVolumes() []float32
	RouteMute() bool
}

func deviceInfoFromProps(props *pwire.PropertyStore) (pwire.ObjectId, int32, int32, bool) {
	devID, ok := props.DeviceID()
	if !ok {
		return 0, 0, 0, false
	}
	routeDev, ok := props.CardProfileDevice()
	if !ok {
		return 0, 0, 0, false
	}
	return pwire.ObjectId(devID), 0, routeDev, true
}
